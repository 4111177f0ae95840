package model

import (
	"fmt"
	"strings"
)

// Severity represents the risk level of a security finding, and of a report
// as a whole.
//
// The zero value is SeverityUnknown. Severity labels produced by the
// generation backend are free text, so every consumer must handle
// SeverityUnknown explicitly (for example with default styling) instead of
// assuming one of the four known levels.
type Severity int

const (
	// SeverityUnknown is the fallback for missing or unrecognized labels.
	// A report without a risk declaration has this risk level.
	SeverityUnknown Severity = iota

	// SeverityLow indicates minor gaps with limited compliance impact.
	SeverityLow

	// SeverityMedium indicates gaps that warrant attention in the next cycle.
	SeverityMedium

	// SeverityHigh indicates serious gaps likely to fail an audit.
	SeverityHigh

	// SeverityCritical indicates gaps that need immediate remediation.
	SeverityCritical
)

// String returns the canonical upper-case label of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// IsKnown reports whether s is one of the four recognized levels.
func (s Severity) IsKnown() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// MarshalText encodes the severity as its label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a label. Unrecognized labels decode to SeverityUnknown.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// ParseSeverity converts a label to a Severity, ignoring case and
// surrounding whitespace. Unrecognized labels yield SeverityUnknown.
func ParseSeverity(label string) Severity {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Severities returns the known levels, most severe first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// SeverityInfo contains presentation metadata for a severity level.
type SeverityInfo struct {
	// Label is the human-friendly name used in headings ("Critical").
	Label string

	// Icon is the marker used in Markdown output.
	Icon string

	// Weight is the per-finding penalty used by risk scoring.
	Weight int
}

// severityInfoMapping is the single source of truth for how each level is
// presented and weighed.
var severityInfoMapping = map[Severity]SeverityInfo{
	SeverityCritical: {Label: "Critical", Icon: "🔴", Weight: 20},
	SeverityHigh:     {Label: "High", Icon: "🟠", Weight: 10},
	SeverityMedium:   {Label: "Medium", Icon: "🟡", Weight: 5},
	SeverityLow:      {Label: "Low", Icon: "🔵", Weight: 2},
}

// GetSeverityInfo returns the presentation metadata for a severity level.
// SeverityUnknown (and any out-of-range value) gets a neutral default.
func GetSeverityInfo(s Severity) SeverityInfo {
	if info, ok := severityInfoMapping[s]; ok {
		return info
	}
	return SeverityInfo{Label: "Unknown", Icon: "⚪", Weight: 0}
}

// ParseSeverityFilter parses a filter expression used by finding filters.
// "ALL" (or an empty string) selects every level and returns all=true.
func ParseSeverityFilter(expr string) (sev Severity, all bool, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "all") {
		return SeverityUnknown, true, nil
	}
	sev = ParseSeverity(expr)
	if !sev.IsKnown() {
		return SeverityUnknown, false, fmt.Errorf("unknown severity %q (want ALL, CRITICAL, HIGH, MEDIUM or LOW)", expr)
	}
	return sev, false, nil
}
