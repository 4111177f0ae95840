package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sentinel/internal/model"
)

// Step is one stage of an assessment run. Steps run in sequence and share
// the run state.
type Step interface {
	// Do executes the step. It returns an error when the run cannot
	// continue; recoverable problems are recorded on the assessment instead.
	Do(ctx context.Context, assessment *model.Assessment) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order.
//
// The context is checked before each step; steps are responsible for
// honouring it while they run. The names of completed steps are appended
// to assessment.PerformedSteps.
func (p *Pipeline) Execute(ctx context.Context, assessment *model.Assessment) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("assessment cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			assessment.Error = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"standards", len(assessment.Request.Standards),
		)

		if err := step.Do(ctx, assessment); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			assessment.Error = err
			return err
		}
		p.logger.Debug("step completed", "step", step.Name())

		assessment.PerformedSteps = append(assessment.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
