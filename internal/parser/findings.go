package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sentinel/internal/model"
)

// findingFieldCount is the number of "::" separated fields after the marker.
const findingFieldCount = 5

// ExtractFindings scans text line by line for FindingMarker lines and
// returns the findings in order of appearance.
//
// A line contributes a finding only when it has exactly five fields and a
// non-empty severity; anything else is skipped silently. Severity labels
// are upper-cased, and labels outside the four known levels are kept in
// RawSeverity with Severity set to SeverityUnknown.
func ExtractFindings(text string) []model.Finding {
	findings := make([]model.Finding, 0)
	upper := cases.Upper(language.Und)

	for line := range strings.Lines(text) {
		i := strings.Index(line, FindingMarker)
		if i < 0 {
			continue
		}

		fields := strings.Split(line[i+len(FindingMarker):], "::")
		if len(fields) != findingFieldCount {
			continue
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		if fields[0] == "" {
			continue
		}

		raw := upper.String(fields[0])
		findings = append(findings, model.Finding{
			Severity:    model.ParseSeverity(raw),
			RawSeverity: raw,
			ControlID:   fields[1],
			Title:       fields[2],
			Description: fields[3],
			Remediation: fields[4],
		})
	}

	return findings
}

// FormatFinding renders a finding as a findings-block line. ExtractFindings
// reads the line back into an equal Finding as long as RawSeverity is set
// and no field contains "::" or a line break.
func FormatFinding(f model.Finding) string {
	return strings.Join([]string{
		FindingMarker,
		f.SeverityLabel(),
		"::", f.ControlID,
		"::", f.Title,
		"::", f.Description,
		"::", f.Remediation,
	}, " ")
}
