// Package backend defines the generation backend used by Sentinel and its
// Gemini implementation.
//
// # Interfaces
//
// The rest of the program depends only on Generator and Conversation:
//
//   - Generator produces assessment reports, checks input completeness,
//     simulates attacks and opens conversations.
//   - Conversation is one remediation chat about an existing report.
//
// Failures are reported as typed errors (GenerationError, ValidationError,
// ChatError, SimulationError) wrapping the underlying cause, so callers can
// use errors.As to tell which call failed and errors.Is to inspect why.
//
// # Gemini
//
// Gemini implements Generator with google.golang.org/genai. Assessments
// and simulations use the pro model with a thinking budget; conversations
// use the flash model.
//
//	gen, err := backend.NewGemini(ctx, apiKey, backend.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	report, err := gen.GenerateAssessment(ctx, req)
package backend
