package parser

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/sentinel/internal/model"
)

// defaultCitationLabel labels numbered references without a title.
const defaultCitationLabel = "External Citation"

// trailingPunctuation is trimmed from bare links, which usually end a
// sentence or sit inside emphasis.
const trailingPunctuation = `.,;:!?'"*_`

// titleTrailing is trimmed from the end of numbered reference titles.
const titleTrailing = " \t:|-([<"

var (
	// markdownLinkRegex matches [text](url) links.
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)

	// bareURLRegex matches http(s) tokens. Tokens directly preceded by "("
	// are filtered in code since RE2 has no lookbehind.
	bareURLRegex = regexp.MustCompile(`https?://[^\s)>\]]+`)

	// numberedRefRegex matches "1. Title - url" and "1. Title: url" lines.
	numberedRefRegex = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s+(.*?)\s*[:|-]?\s*(https?://\S+)`)
)

// ExtractCitations harvests external references from report text.
//
// Three passes run in order: Markdown links (image embeds excluded), bare
// http(s) links, and numbered reference lists. A later pass only adds
// targets no earlier pass produced, so a target written both as a Markdown
// link and as a bare link keeps the link text. Targets are compared as
// exact strings and must parse as absolute http(s) URLs with a host.
func ExtractCitations(text string) []model.Citation {
	c := newCitationSet()
	c.addAll(markdownCitations(text))
	c.addAll(bareCitations(text))
	c.addAll(numberedCitations(text))
	return c.list
}

// citationSet accumulates citations, keeping the first one per target.
type citationSet struct {
	seen map[string]bool
	list []model.Citation
}

func newCitationSet() *citationSet {
	return &citationSet{
		seen: make(map[string]bool),
		list: make([]model.Citation, 0),
	}
}

func (c *citationSet) addAll(citations []model.Citation) {
	for _, citation := range citations {
		if c.seen[citation.Target] {
			continue
		}
		c.seen[citation.Target] = true
		c.list = append(c.list, citation)
	}
}

// markdownCitations returns [text](url) links that are not image embeds.
func markdownCitations(text string) []model.Citation {
	var out []model.Citation
	for _, m := range markdownLinkRegex.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '!' {
			continue
		}
		target := text[m[4]:m[5]]
		if _, ok := validTarget(target); !ok {
			continue
		}
		out = append(out, model.Citation{
			DisplayText: strings.TrimSpace(text[m[2]:m[3]]),
			Target:      target,
		})
	}
	return out
}

// bareCitations returns http(s) tokens that are not the target of a
// Markdown link, labelled with their host.
func bareCitations(text string) []model.Citation {
	var out []model.Citation
	for _, m := range bareURLRegex.FindAllStringIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '(' {
			continue
		}
		target := strings.TrimRight(text[m[0]:m[1]], trailingPunctuation)
		u, ok := validTarget(target)
		if !ok {
			continue
		}
		out = append(out, model.Citation{
			DisplayText: "Reference: " + displayHost(u),
			Target:      target,
		})
	}
	return out
}

// numberedCitations returns references written as numbered list items.
// A target wrapped in parentheses loses its closing one, and separators
// or opening brackets left at the end of the title are dropped.
func numberedCitations(text string) []model.Citation {
	var out []model.Citation
	for _, m := range numberedRefRegex.FindAllStringSubmatchIndex(text, -1) {
		trim := trailingPunctuation
		if m[4] > 0 && text[m[4]-1] == '(' {
			trim += ")"
		}
		target := strings.TrimRight(text[m[4]:m[5]], trim)
		if _, ok := validTarget(target); !ok {
			continue
		}
		title := strings.TrimRight(strings.TrimSpace(text[m[2]:m[3]]), titleTrailing)
		if title == "" {
			title = defaultCitationLabel
		}
		out = append(out, model.Citation{DisplayText: title, Target: target})
	}
	return out
}

// validTarget parses target and reports whether it is an absolute http(s)
// URL with a host.
func validTarget(target string) (*url.URL, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// displayHost returns the Unicode form of the host without a "www." prefix.
func displayHost(u *url.URL) string {
	host := u.Hostname()
	if decoded, err := idna.Display.ToUnicode(host); err == nil {
		host = decoded
	}
	return strings.TrimPrefix(host, "www.")
}
