package backend

import "errors"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("API key is missing: set GEMINI_API_KEY or API_KEY")

	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("backend returned an empty response")

	// ErrConversationClosed is returned by Send after Close.
	ErrConversationClosed = errors.New("conversation is closed")
)

// GenerationError reports a failed assessment generation.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "assessment generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a failed input pre-check.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "input validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ChatError reports a failed conversation call.
type ChatError struct {
	// Op is the failed operation ("create", "send" or "apply").
	Op  string
	Err error
}

func (e *ChatError) Error() string {
	return "chat " + e.Op + " failed: " + e.Err.Error()
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// SimulationError reports a failed attack simulation.
type SimulationError struct {
	Err error
}

func (e *SimulationError) Error() string {
	return "attack simulation failed: " + e.Err.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
