package model

import "time"

// AssessmentRequest is the input of an initial assessment.
type AssessmentRequest struct {
	// Material is the architecture description, policy text or code
	// to audit.
	Material string `json:"material"`

	// Standards are the compliance frameworks to audit against.
	Standards []Standard `json:"standards"`

	// Persona is the audience the report is written for.
	Persona Persona `json:"persona"`

	// Attachments are supporting files sent along with the material.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// MissingField describes one piece of context the pre-check found missing.
type MissingField struct {
	// ID is a short machine identifier (e.g. "data_retention").
	ID string `json:"id"`

	// Label is the question presented to the user.
	Label string `json:"label"`

	// Type is the expected input kind ("text", "select" or "boolean").
	Type string `json:"type"`

	// Description explains why the field matters.
	Description string `json:"description,omitempty"`

	// Options are the choices for "select" fields.
	Options []string `json:"options,omitempty"`
}

// ValidationResult is the outcome of the input completeness pre-check.
type ValidationResult struct {
	// IsComplete is true when the material is sufficient for an assessment.
	IsComplete bool `json:"isComplete"`

	// MissingFields lists the context the backend asked for.
	MissingFields []MissingField `json:"missingFields"`

	// Reasoning is the backend's explanation.
	Reasoning string `json:"reasoning"`
}

// ValidationBypassReason is the reasoning recorded when the pre-check itself
// fails and the assessment proceeds anyway.
const ValidationBypassReason = "Validation bypass due to error."

// BypassedValidation returns the result used when the pre-check fails.
func BypassedValidation() ValidationResult {
	return ValidationResult{
		IsComplete:    true,
		MissingFields: []MissingField{},
		Reasoning:     ValidationBypassReason,
	}
}

// ConversationContext seeds a conversation about an existing report.
type ConversationContext struct {
	// Report is the report text the conversation is about.
	Report string

	// Material is the original assessed material.
	Material string

	// Standards are the frameworks the report was audited against.
	Standards []Standard

	// Persona is the audience of the conversation.
	Persona Persona
}

// Assessment is the working state of one assessment run. Pipeline steps
// read the request and fill in the remaining fields.
type Assessment struct {
	// Request is the user's input.
	Request AssessmentRequest

	// Validation is the pre-check outcome, nil when the pre-check was skipped.
	Validation *ValidationResult

	// Report is the generated report text.
	Report string

	// StartedAt is when the run began.
	StartedAt time.Time

	// PerformedSteps lists the names of the steps that ran, in order.
	PerformedSteps []string

	// Error is the error of the last failed step, if any.
	Error error
}

// NewAssessment creates the run state for a request.
func NewAssessment(req AssessmentRequest) *Assessment {
	return &Assessment{
		Request:        req,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}
