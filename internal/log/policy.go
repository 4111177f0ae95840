package log

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/sentinel/internal/secrets"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// policy decides which attributes are masked. Keys are compared in lower
// case.
type policy struct {
	// keys are attribute names that always hold a credential.
	keys map[string]struct{}

	// keywords mask any key containing them, e.g. "db_password".
	// The bare "key" is not among them: it would hit "control_key" or
	// "cache_key". Specific forms such as "api_key" are in keys.
	keywords []string

	// values match a whole value that is itself a credential.
	values []*regexp.Regexp

	// scanner masks credentials inside longer text: Gemini errors echo
	// the request URL, and pasted Terraform ends up in chat turns.
	scanner *secrets.Scanner
}

func defaultPolicy() *policy {
	keys := []string{
		"authorization", "proxy-authorization", "x-api-key", "x-goog-api-key",
		"api_key", "apikey", "api-key", "access_token", "refresh_token",
		"private_key", "privatekey", "secret_key", "secretkey",
		"password", "passwd", "secret", "token", "credential", "credentials", "auth",
	}
	p := &policy{
		keys:     make(map[string]struct{}, len(keys)),
		keywords: []string{"password", "passwd", "secret", "token", "auth", "credential", "private"},
		values: []*regexp.Regexp{
			regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
			regexp.MustCompile(`(?i)^bearer\s+.+`),
			regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
			regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
			regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
		},
		scanner: secrets.NewScanner(),
	}
	for _, k := range keys {
		p.keys[k] = struct{}{}
	}
	return p
}

// sensitiveKey reports whether an attribute named key must be masked.
func (p *policy) sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if _, ok := p.keys[key]; ok {
		return true
	}
	for _, kw := range p.keywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// sensitiveValue reports whether value as a whole is a credential.
func (p *policy) sensitiveValue(value string) bool {
	for _, re := range p.values {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// scrub masks credentials embedded in text.
func (p *policy) scrub(text string) string {
	return p.scanner.RedactWith(text, MaskValue)
}

// attr returns a, masked according to the policy. Groups are walked
// recursively.
func (p *policy) attr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		masked := make([]slog.Attr, len(members))
		for i, m := range members {
			masked[i] = p.attr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if p.sensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	var text string
	switch a.Value.Kind() {
	case slog.KindString:
		text = a.Value.String()
		if p.sensitiveValue(text) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		err, ok := a.Value.Any().(error)
		if !ok {
			return a
		}
		text = err.Error()
	default:
		return a
	}

	if scrubbed := p.scrub(text); scrubbed != text {
		return slog.String(a.Key, scrubbed)
	}
	return a
}
