// Package model defines the core data structures used throughout Sentinel.
//
// This package contains the following main types:
//   - ParsedView: The structured view derived from a report's text
//   - Finding: One structured security issue from the hidden findings block
//   - Citation: One external reference link harvested from the report
//   - VersionEntry: One immutable snapshot in a report's edit history
//   - AssessmentRequest: The material, standards and persona sent for assessment
//   - ChatMessage: One entry in the remediation conversation transcript
//
// Models live in their own package because the parser, the history store,
// the session orchestrator and the report writers all share them.
//
// The models are serializable to JSON for report output and archive storage.
package model
