package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/sentinel/internal/backend"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/parser"
)

// ErrInputIncomplete is returned by a strict PrecheckStep when the backend
// reports missing context.
var ErrInputIncomplete = errors.New("assessment input is incomplete")

// PrecheckStep asks the backend whether the material is detailed enough.
//
// The step fails open: a failed pre-check is logged and the run continues
// as if the input were complete. Only a strict step stops the run, and only
// when the backend answers that the input is incomplete.
type PrecheckStep struct {
	validator interface {
		ValidateInput(ctx context.Context, material string, standards []model.Standard) (model.ValidationResult, error)
	}
	strict bool
	logger *slog.Logger
}

// PrecheckStepOption configures a PrecheckStep.
type PrecheckStepOption func(*PrecheckStep)

// WithStrictPrecheck stops the run when the input is incomplete.
func WithStrictPrecheck(strict bool) PrecheckStepOption {
	return func(s *PrecheckStep) {
		s.strict = strict
	}
}

// WithPrecheckLogger sets a custom logger for the pre-check step.
func WithPrecheckLogger(logger *slog.Logger) PrecheckStepOption {
	return func(s *PrecheckStep) {
		s.logger = logger
	}
}

// NewPrecheckStep creates a pre-check step using gen.
func NewPrecheckStep(gen backend.Generator, opts ...PrecheckStepOption) *PrecheckStep {
	s := &PrecheckStep{
		validator: gen,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PrecheckStep) Name() string {
	return "precheck"
}

// Do runs the pre-check and stores the result on the assessment.
func (s *PrecheckStep) Do(ctx context.Context, assessment *model.Assessment) error {
	result, err := s.validator.ValidateInput(ctx, assessment.Request.Material, assessment.Request.Standards)
	if err != nil {
		s.logger.Warn("input pre-check failed, continuing", "error", err)
		result = model.BypassedValidation()
	}
	assessment.Validation = &result

	if s.strict && !result.IsComplete {
		labels := make([]string, len(result.MissingFields))
		for i, f := range result.MissingFields {
			labels[i] = f.Label
		}
		return fmt.Errorf("%w: %s", ErrInputIncomplete, strings.Join(labels, ", "))
	}
	return nil
}

// GenerateStep produces the report.
type GenerateStep struct {
	gen backend.Generator
}

// NewGenerateStep creates a generation step using gen.
func NewGenerateStep(gen backend.Generator) *GenerateStep {
	return &GenerateStep{gen: gen}
}

// Name returns the step name.
func (s *GenerateStep) Name() string {
	return "generate"
}

// Do generates the report and stores it on the assessment. Errors that are
// not already a *backend.GenerationError are wrapped in one.
func (s *GenerateStep) Do(ctx context.Context, assessment *model.Assessment) error {
	report, err := s.gen.GenerateAssessment(ctx, assessment.Request)
	if err != nil {
		var genErr *backend.GenerationError
		if !errors.As(err, &genErr) {
			err = &backend.GenerationError{Err: err}
		}
		return err
	}
	assessment.Report = report
	return nil
}

// NormalizeStep strips a code fence wrapping the whole report.
type NormalizeStep struct{}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do unwraps the report. An empty report after unwrapping is a generation
// failure.
func (s *NormalizeStep) Do(_ context.Context, assessment *model.Assessment) error {
	assessment.Report = parser.Unwrap(assessment.Report)
	if assessment.Report == "" {
		return &backend.GenerationError{Err: backend.ErrEmptyResponse}
	}
	return nil
}

// NewAssessmentPipeline builds the standard run: an optional pre-check,
// generation and normalization.
func NewAssessmentPipeline(gen backend.Generator, precheck, strict bool, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	if precheck || strict {
		p.AddStep(NewPrecheckStep(gen, WithStrictPrecheck(strict), WithPrecheckLogger(logger)))
	}
	p.AddSteps(NewGenerateStep(gen), NewNormalizeStep())
	return p
}
