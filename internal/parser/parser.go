package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sentinel/internal/model"
)

// FindingMarker starts every line of the hidden findings block.
const FindingMarker = "::FINDING::"

const fence = "```"

var (
	// diagramHeadingRegex matches stray heading lines that duplicate the
	// title of the diagram panel, with or without a leading "#".
	diagramHeadingRegex = regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?Attack Path Visualization:?[ \t]*\r?$\n?`)

	// riskScoreRegex matches the risk declaration, tolerating Markdown
	// emphasis and a separator between label and level.
	riskScoreRegex = regexp.MustCompile(`(?i)Risk Score\s*[*_]*\s*[:|-]?\s*[*_]*\s*(Critical|High|Medium|Low)`)

	// mermaidOpenRegex matches the opening fence of a diagram block.
	mermaidOpenRegex = regexp.MustCompile("(?m)^[ \t]*```mermaid[ \t]*\r?$")

	// summaryHeadingRegex matches the executive summary heading.
	summaryHeadingRegex = regexp.MustCompile(`(?im)^(#{1,6})[ \t]*[*_]*[ \t]*Executive TL;DR.*$`)

	// headingRegex matches any ATX heading and captures its level.
	headingRegex = regexp.MustCompile(`(?m)^(#{1,6})[ \t]`)

	// infraBlockRegex matches terminated hcl/terraform blocks.
	infraBlockRegex = regexp.MustCompile("(?is)```(?:hcl|terraform)[ \t]*\r?\n(.*?)```")

	// infraOpenRegex detects an hcl/terraform fence, terminated or not.
	infraOpenRegex = regexp.MustCompile("(?i)```(?:hcl|terraform)\\b")
)

// Parse derives the structured view of a report.
//
// The text is unwrapped, duplicate diagram headings are removed, and the
// result is truncated at the first FindingMarker to form the Body. Risk
// level, diagram, summary and citations come from the Body; findings are
// scanned from the whole unwrapped text.
func Parse(raw string) model.ParsedView {
	text := diagramHeadingRegex.ReplaceAllString(Unwrap(raw), "")

	body := text
	if i := strings.Index(body, FindingMarker); i >= 0 {
		body = body[:i]
	}
	body = strings.TrimSpace(body)

	return model.ParsedView{
		RiskLevel: ExtractRiskLevel(body),
		Findings:  ExtractFindings(text),
		Citations: ExtractCitations(body),
		Diagram:   extractDiagram(body),
		Summary:   extractSummary(body),
		Body:      body,
	}
}

// Unwrap trims the text and removes a code fence wrapping the whole report.
//
// Backends sometimes answer with the report inside a single ``` or
// ```markdown fence. Only a fence whose opening line carries no other tag
// and whose closing fence ends the text is removed, so reports that merely
// begin with a diagram or code block are left intact.
func Unwrap(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) || len(text) < 2*len(fence) {
		return text
	}

	firstLine, rest, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	tag := strings.TrimSpace(strings.TrimPrefix(firstLine, fence))
	if tag != "" && !strings.EqualFold(tag, "markdown") {
		return text
	}
	return strings.TrimSpace(strings.TrimSuffix(rest, fence))
}

// ExtractRiskLevel returns the level of the first risk declaration, or
// SeverityUnknown when the text declares none.
func ExtractRiskLevel(text string) model.Severity {
	m := riskScoreRegex.FindStringSubmatch(text)
	if m == nil {
		return model.SeverityUnknown
	}
	return model.ParseSeverity(cases.Upper(language.Und).String(m[1]))
}

// extractDiagram returns the content of the first mermaid block. An
// unterminated block yields everything after its opening fence.
func extractDiagram(text string) string {
	loc := mermaidOpenRegex.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractSummary returns the executive TL;DR section, which runs until the
// next heading of the same or a higher level. Lines inside fenced code
// blocks are never headings.
func extractSummary(text string) string {
	m := summaryHeadingRegex.FindStringSubmatchIndex(text)
	if m == nil {
		return ""
	}
	level := m[3] - m[2]
	rest := text[m[1]:]

	inFence := false
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			inFence = !inFence
		} else if !inFence {
			if h := headingRegex.FindStringSubmatch(line); h != nil && len(h[1]) <= level {
				return strings.TrimSpace(rest[:offset])
			}
		}
		offset += len(line)
	}
	return strings.TrimSpace(rest)
}

// DetectCapabilities reports which optional features the report supports.
func DetectCapabilities(raw string) model.Capabilities {
	return model.Capabilities{
		InfrastructureCode: infraOpenRegex.MatchString(raw),
		Diagram:            mermaidOpenRegex.MatchString(raw),
	}
}

// ExtractInfrastructureBlocks returns the trimmed content of every
// terminated hcl or terraform block, in order of appearance.
func ExtractInfrastructureBlocks(raw string) []string {
	matches := infraBlockRegex.FindAllStringSubmatch(raw, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		if block := strings.TrimSpace(m[1]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// Document parses a report and bundles it with the metadata writers use.
func Document(raw string, req model.AssessmentRequest) *model.Document {
	view := Parse(raw)
	return &model.Document{
		Raw:            raw,
		View:           view,
		Metrics:        view.Metrics(),
		Capabilities:   DetectCapabilities(raw),
		Standards:      req.Standards,
		Persona:        req.Persona,
		Infrastructure: ExtractInfrastructureBlocks(raw),
	}
}
