package backend

import (
	"context"

	"github.com/nao1215/sentinel/internal/model"
)

// Generator is the generation backend.
type Generator interface {
	// GenerateAssessment produces a report for the request.
	// Failures are returned as *GenerationError.
	GenerateAssessment(ctx context.Context, req model.AssessmentRequest) (string, error)

	// ValidateInput checks whether material has enough detail for a
	// high-fidelity assessment. Failures are returned as *ValidationError;
	// callers are expected to proceed anyway.
	ValidateInput(ctx context.Context, material string, standards []model.Standard) (model.ValidationResult, error)

	// SimulateAttack narrates a red-team attack exploiting one finding.
	// Failures are returned as *SimulationError.
	SimulateAttack(ctx context.Context, findingSummary, infrastructure, standard string) (string, error)

	// CreateConversation opens a remediation chat about a report.
	// Failures are returned as *ChatError.
	CreateConversation(ctx context.Context, cc model.ConversationContext) (Conversation, error)
}

// Conversation is one remediation chat. It keeps its own turn history.
type Conversation interface {
	// Send sends one user turn and returns the reply text.
	// Failures are returned as *ChatError.
	Send(ctx context.Context, message string, attachments []model.Attachment) (string, error)

	// Close releases the conversation. Send fails after Close.
	Close() error
}
