package model

import "strings"

// Finding is one structured security issue taken from the hidden findings
// block at the end of a report.
//
// A Finding has no stable identity: it is identified by its position in a
// single parse pass, and re-parsing after an edit produces a new list.
type Finding struct {
	// Severity is the recognized level, or SeverityUnknown.
	Severity Severity `json:"severity"`

	// RawSeverity is the upper-cased label exactly as written by the
	// generator. It differs from Severity.String() only for unrecognized labels.
	RawSeverity string `json:"raw_severity"`

	// ControlID is the compliance control identifier (e.g. "AC-2", "CC6.1").
	ControlID string `json:"control_id"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description explains the gap.
	Description string `json:"description"`

	// Remediation describes how to close the gap.
	Remediation string `json:"remediation"`
}

// SeverityLabel returns the label to display for the finding, preferring
// the generator's own wording when the level is unrecognized.
func (f Finding) SeverityLabel() string {
	if !f.Severity.IsKnown() && f.RawSeverity != "" {
		return f.RawSeverity
	}
	return f.Severity.String()
}

// Summary returns a one-line description used as simulation input.
func (f Finding) Summary() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(f.SeverityLabel())
	sb.WriteString("] ")
	if f.ControlID != "" {
		sb.WriteString(f.ControlID)
		sb.WriteString(" ")
	}
	sb.WriteString(f.Title)
	if f.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Description)
	}
	return sb.String()
}

// FilterFindings returns the findings matching a severity filter and a
// case-insensitive search term. When all is true the severity is ignored.
// The search term matches the title, control ID or description.
func FilterFindings(findings []Finding, severity Severity, all bool, search string) []Finding {
	term := strings.ToLower(strings.TrimSpace(search))

	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if !all && f.Severity != severity {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(f.Title), term) &&
			!strings.Contains(strings.ToLower(f.ControlID), term) &&
			!strings.Contains(strings.ToLower(f.Description), term) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// CountBySeverity returns the number of findings at each level.
// Unknown severities are counted under SeverityUnknown.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 5)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
