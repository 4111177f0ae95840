// Package parser turns the semi-structured report text produced by the
// generation backend into a model.ParsedView.
//
// # Report format
//
// A report is Markdown with a few conventions the parser relies on:
//
//   - a "Risk Score" line declaring CRITICAL, HIGH, MEDIUM or LOW
//   - an optional "Executive TL;DR" section
//   - an optional ```mermaid block holding the attack-path diagram
//   - optional ```hcl or ```terraform remediation blocks
//   - a hidden block of ::FINDING:: lines at the very end
//
// The findings block uses one line per finding:
//
//	::FINDING:: SEVERITY :: CONTROL_ID :: TITLE :: DESCRIPTION :: REMEDIATION
//
// # Guarantees
//
// Parse is deterministic and total. It never returns an error: every field
// of the view has a default (SeverityUnknown, empty slices, empty strings),
// and malformed lines are skipped. Parsing the same text twice yields equal
// views, so callers re-parse on every read instead of caching.
//
// # Usage
//
//	view := parser.Parse(reportText)
//	for _, f := range view.Findings {
//	    fmt.Println(f.Severity, f.ControlID, f.Title)
//	}
package parser
