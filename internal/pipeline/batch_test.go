package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/nao1215/sentinel/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// started by the go.opencensus.io init that genai pulls in
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func batchFindings(n int) []model.Finding {
	findings := make([]model.Finding, n)
	for i := range findings {
		findings[i] = model.Finding{
			Severity:    model.SeverityHigh,
			RawSeverity: "HIGH",
			ControlID:   fmt.Sprintf("C-%d", i),
			Title:       fmt.Sprintf("finding %d", i),
		}
	}
	return findings
}

// TestSimulationBatchNew tests the SimulationBatch constructor.
func TestSimulationBatchNew(t *testing.T) {
	t.Parallel()

	t.Run("creates batch with defaults", func(t *testing.T) {
		t.Parallel()

		b := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2")
		if b.concurrency != 3 {
			t.Errorf("expected default concurrency 3, got %d", b.concurrency)
		}
		if b.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		b := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2", WithConcurrency(5))
		if b.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", b.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		b := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2", WithConcurrency(0))
		if b.concurrency != 3 {
			t.Errorf("expected concurrency 3, got %d", b.concurrency)
		}
	})

	t.Run("WithBatchLogger(nil) falls back to default", func(t *testing.T) {
		t.Parallel()

		b := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2", WithBatchLogger(nil))
		if b.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestSimulationBatchProcess tests batch processing.
func TestSimulationBatchProcess(t *testing.T) {
	t.Parallel()

	t.Run("preserves input order", func(t *testing.T) {
		t.Parallel()

		findings := batchFindings(10)
		b := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2", WithConcurrency(4))

		results, err := b.Process(context.Background(), findings)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(results) != len(findings) {
			t.Fatalf("expected %d results, got %d", len(findings), len(results))
		}
		for i, r := range results {
			if r.Finding.ControlID != findings[i].ControlID {
				t.Errorf("result %d: got %s, expected %s", i, r.Finding.ControlID, findings[i].ControlID)
			}
			if !strings.HasPrefix(r.Narrative, "simulated [HIGH] "+findings[i].ControlID) {
				t.Errorf("result %d: narrative %q", i, r.Narrative)
			}
		}
	})

	t.Run("keeps failed simulations", func(t *testing.T) {
		t.Parallel()

		simErr := errors.New("engine error")
		gen := &fakeGenerator{simulate: func(summary string) (string, error) {
			if strings.Contains(summary, "C-1 ") {
				return "", simErr
			}
			return "ok", nil
		}}

		results, err := NewSimulationBatch(gen, "infra", "SOC2").Process(context.Background(), batchFindings(3))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if !errors.Is(results[1].Err, simErr) || results[1].Narrative != "" {
			t.Errorf("results[1] = %+v", results[1])
		}
		if results[0].Err != nil || results[2].Err != nil {
			t.Error("other simulations should succeed")
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		gen := &fakeGenerator{simulate: func(string) (string, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return "ok", nil
		}}

		_, err := NewSimulationBatch(gen, "infra", "SOC2", WithConcurrency(2)).Process(context.Background(), batchFindings(8))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency %d exceeds limit 2", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		gen := &fakeGenerator{simulate: func(string) (string, error) {
			calls.Add(1)
			return "ok", nil
		}}

		_, err := NewSimulationBatch(gen, "infra", "SOC2").Process(ctx, batchFindings(5))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Process() error = %v, expected context.Canceled", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no simulations, got %d", calls.Load())
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		results, err := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2").Process(context.Background(), nil)
		if err != nil || len(results) != 0 {
			t.Errorf("Process(nil) = %v, %v", results, err)
		}
	})
}

// TestSimulationBatchProcessWithCallback tests streaming results.
func TestSimulationBatchProcessWithCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[int]string)

	err := NewSimulationBatch(&fakeGenerator{}, "infra", "SOC2").ProcessWithCallback(
		context.Background(),
		batchFindings(4),
		func(r SimulationResult, i int) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = r.Finding.ControlID
		},
	)
	if err != nil {
		t.Fatalf("ProcessWithCallback() error = %v", err)
	}
	for i := range 4 {
		if seen[i] != fmt.Sprintf("C-%d", i) {
			t.Errorf("index %d: got %q", i, seen[i])
		}
	}
}
