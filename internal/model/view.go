package model

import "strings"

// Citation is one external reference link harvested from a report.
// Two citations are the same citation when their Target strings are equal.
type Citation struct {
	// DisplayText is the link text, or a synthesized label for bare links.
	DisplayText string `json:"display_text"`

	// Target is the absolute http(s) URL, exactly as written.
	Target string `json:"target"`
}

// ParsedView is the structured view derived from a report's text.
//
// A ParsedView is a pure function of the report text. It is recomputed
// whenever the text is read and is never stored or edited on its own.
type ParsedView struct {
	// RiskLevel is the overall risk declared by the report.
	RiskLevel Severity `json:"risk_level"`

	// Findings are the structured findings in order of appearance.
	Findings []Finding `json:"findings"`

	// Citations are the external references, deduplicated by target.
	Citations []Citation `json:"citations"`

	// Diagram is the attack-path diagram source, if the report has one.
	Diagram string `json:"diagram,omitempty"`

	// Summary is the executive TL;DR section, if the report has one.
	Summary string `json:"summary,omitempty"`

	// Body is the displayable report text. The hidden findings block is
	// excluded.
	Body string `json:"body"`
}

// HasDiagram reports whether the report contained a diagram block.
func (v ParsedView) HasDiagram() bool {
	return v.Diagram != ""
}

// HasSummary reports whether the report contained a TL;DR section.
func (v ParsedView) HasSummary() bool {
	return v.Summary != ""
}

// Capabilities are the optional features a report supports. They gate UI
// actions (for example the Terraform export) and are not part of ParsedView.
type Capabilities struct {
	// InfrastructureCode is true when the report has hcl/terraform blocks.
	InfrastructureCode bool `json:"infrastructure_code"`

	// Diagram is true when the report has a mermaid block.
	Diagram bool `json:"diagram"`
}

// Integrity badge labels, from healthiest to worst.
const (
	BadgeIronclad        = "Ironclad"
	BadgeFortified       = "Fortified"
	BadgeCompromised     = "Compromised"
	BadgeCriticalFailure = "Critical Failure"
)

// Metrics are the headline numbers shown next to a report.
type Metrics struct {
	// RiskLevel mirrors ParsedView.RiskLevel.
	RiskLevel Severity `json:"risk_level"`

	// GapCount is the number of compliance gaps.
	GapCount int `json:"gap_count"`

	// CriticalCount is the number of critical gaps.
	CriticalCount int `json:"critical_count"`

	// Integrity is a 0-100 posture score.
	Integrity int `json:"integrity"`

	// Badge is the label for the Integrity band.
	Badge string `json:"badge"`
}

// Metrics computes the headline numbers for the view.
//
// Counts come from the structured findings. When a report has no findings
// block, they fall back to counting "NON-COMPLIANT" and "Critical" markers
// in the body text.
func (v ParsedView) Metrics() Metrics {
	counts := CountBySeverity(v.Findings)

	critical := counts[SeverityCritical]
	if critical == 0 {
		critical = strings.Count(v.Body, "Critical")
	}
	gaps := len(v.Findings)
	if gaps == 0 {
		gaps = strings.Count(v.Body, "NON-COMPLIANT")
	}

	integrity := 100 - critical*15 - gaps*2
	switch v.RiskLevel {
	case SeverityCritical:
		integrity -= 20
	case SeverityHigh:
		integrity -= 10
	}
	integrity = max(0, min(100, integrity))

	return Metrics{
		RiskLevel:     v.RiskLevel,
		GapCount:      gaps,
		CriticalCount: critical,
		Integrity:     integrity,
		Badge:         integrityBadge(integrity),
	}
}

// integrityBadge maps an integrity score to its band label.
func integrityBadge(integrity int) string {
	switch {
	case integrity >= 90:
		return BadgeIronclad
	case integrity >= 70:
		return BadgeFortified
	case integrity >= 40:
		return BadgeCompromised
	default:
		return BadgeCriticalFailure
	}
}
