package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sentinel/internal/model"
)

// Simulator narrates an attack exploiting one finding.
// backend.Generator satisfies this interface.
type Simulator interface {
	SimulateAttack(ctx context.Context, findingSummary, infrastructure, standard string) (string, error)
}

// SimulationResult is the outcome of one attack simulation.
type SimulationResult struct {
	// Finding is the simulated finding.
	Finding model.Finding

	// Narrative is the simulation text. It is empty when Err is set.
	Narrative string

	// Err is the simulation failure, if any.
	Err error
}

// SimulationBatch runs attack simulations for several findings with
// bounded concurrency. Simulations only read the report, so they are the
// one place where backend calls run in parallel.
type SimulationBatch struct {
	simulator      Simulator
	infrastructure string
	standard       string
	concurrency    int
	logger         *slog.Logger
}

// BatchOption configures a SimulationBatch.
type BatchOption func(*SimulationBatch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *SimulationBatch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent simulations.
// Default is 3 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *SimulationBatch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewSimulationBatch creates a batch that simulates attacks against
// infrastructure in the context of standard.
func NewSimulationBatch(sim Simulator, infrastructure, standard string, opts ...BatchOption) *SimulationBatch {
	b := &SimulationBatch{
		simulator:      sim,
		infrastructure: infrastructure,
		standard:       standard,
		concurrency:    3,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Process simulates every finding. Results are returned in input order and
// include failed simulations; the error is non-nil only when ctx ends
// before every simulation has started.
func (b *SimulationBatch) Process(ctx context.Context, findings []model.Finding) ([]SimulationResult, error) {
	results := make([]SimulationResult, len(findings))
	err := b.ProcessWithCallback(ctx, findings, func(r SimulationResult, i int) {
		// Each index is written by exactly one goroutine.
		results[i] = r
	})
	return results, err
}

// ProcessWithCallback simulates every finding and calls callback with each
// result and its input index as soon as it completes. The callback runs on
// the simulating goroutine and must be safe for concurrent use.
func (b *SimulationBatch) ProcessWithCallback(
	ctx context.Context,
	findings []model.Finding,
	callback func(result SimulationResult, index int),
) error {
	b.logger.Info("starting attack simulations",
		"findings", len(findings),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, f := range findings {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			narrative, err := b.simulator.SimulateAttack(ctx, f.Summary(), b.infrastructure, b.standard)
			if err != nil {
				b.logger.Warn("simulation failed",
					"control", f.ControlID,
					"error", err,
				)
			}
			callback(SimulationResult{Finding: f, Narrative: narrative, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()
	b.logger.Info("attack simulations complete",
		"findings", len(findings),
		"elapsed", time.Since(start),
	)
	return err
}
