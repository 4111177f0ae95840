package model

import "testing"

func TestParsedViewMetrics(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		view          ParsedView
		wantGaps      int
		wantCritical  int
		wantIntegrity int
		wantBadge     string
	}{
		{
			name:          "clean report",
			view:          ParsedView{RiskLevel: SeverityLow},
			wantIntegrity: 100,
			wantBadge:     BadgeIronclad,
		},
		{
			name: "structured findings",
			view: ParsedView{
				RiskLevel: SeverityHigh,
				Findings:  sampleFindings(),
			},
			wantGaps:      4,
			wantCritical:  1,
			wantIntegrity: 100 - 15 - 8 - 10,
			wantBadge:     BadgeCompromised,
		},
		{
			name: "fallback to body markers",
			view: ParsedView{
				RiskLevel: SeverityCritical,
				Body:      "AC-2: NON-COMPLIANT (Critical)\nSC-8: NON-COMPLIANT",
			},
			wantGaps:      2,
			wantCritical:  1,
			wantIntegrity: 100 - 15 - 4 - 20,
			wantBadge:     BadgeCompromised,
		},
		{
			name: "clamped at zero",
			view: ParsedView{
				RiskLevel: SeverityCritical,
				Findings: []Finding{
					{Severity: SeverityCritical}, {Severity: SeverityCritical},
					{Severity: SeverityCritical}, {Severity: SeverityCritical},
					{Severity: SeverityCritical}, {Severity: SeverityCritical},
				},
			},
			wantGaps:      6,
			wantCritical:  6,
			wantIntegrity: 0,
			wantBadge:     BadgeCriticalFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := tc.view.Metrics()
			if m.GapCount != tc.wantGaps {
				t.Errorf("GapCount = %d, expected %d", m.GapCount, tc.wantGaps)
			}
			if m.CriticalCount != tc.wantCritical {
				t.Errorf("CriticalCount = %d, expected %d", m.CriticalCount, tc.wantCritical)
			}
			if m.Integrity != tc.wantIntegrity {
				t.Errorf("Integrity = %d, expected %d", m.Integrity, tc.wantIntegrity)
			}
			if m.Badge != tc.wantBadge {
				t.Errorf("Badge = %q, expected %q", m.Badge, tc.wantBadge)
			}
			if m.RiskLevel != tc.view.RiskLevel {
				t.Errorf("RiskLevel = %v, expected %v", m.RiskLevel, tc.view.RiskLevel)
			}
		})
	}
}

func TestIntegrityBadgeBoundaries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score int
		want  string
	}{
		{100, BadgeIronclad},
		{90, BadgeIronclad},
		{89, BadgeFortified},
		{70, BadgeFortified},
		{69, BadgeCompromised},
		{40, BadgeCompromised},
		{39, BadgeCriticalFailure},
		{0, BadgeCriticalFailure},
	}

	for _, tc := range testCases {
		if got := integrityBadge(tc.score); got != tc.want {
			t.Errorf("integrityBadge(%d) = %q, expected %q", tc.score, got, tc.want)
		}
	}
}
