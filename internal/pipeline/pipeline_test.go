package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sentinel/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, assessment *model.Assessment) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, assessment *model.Assessment) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, assessment)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if len(p.StepNames()) != 0 {
			t.Errorf("expected 0 steps, got %v", p.StepNames())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if diff := cmp.Diff([]string{"first", "second", "third"}, p.StepNames()); diff != "" {
		t.Errorf("StepNames() mismatch (-want +got):\n%s", diff)
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		order := make([]string, 0)
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.Assessment) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record("step-1"), record("step-2"), record("step-3"))

		a := model.NewAssessment(model.AssessmentRequest{})
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		want := []string{"step-1", "step-2", "step-3"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("execution order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, a.PerformedSteps); diff != "" {
			t.Errorf("PerformedSteps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		last := &mockStep{name: "last"}

		p := New()
		p.AddSteps(
			&mockStep{name: "ok"},
			&mockStep{name: "fail", doFunc: func(_ context.Context, _ *model.Assessment) error { return stepErr }},
			last,
		)

		a := model.NewAssessment(model.AssessmentRequest{})
		err := p.Execute(context.Background(), a)
		if !errors.Is(err, stepErr) {
			t.Fatalf("Execute() error = %v, expected %v", err, stepErr)
		}
		if last.callCount != 0 {
			t.Error("step after failure should not run")
		}
		if !errors.Is(a.Error, stepErr) {
			t.Errorf("assessment.Error = %v", a.Error)
		}
		if diff := cmp.Diff([]string{"ok"}, a.PerformedSteps); diff != "" {
			t.Errorf("PerformedSteps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		second := &mockStep{name: "second"}

		p := New()
		p.AddSteps(
			&mockStep{name: "first", doFunc: func(_ context.Context, _ *model.Assessment) error {
				cancel()
				return nil
			}},
			second,
		)

		a := model.NewAssessment(model.AssessmentRequest{})
		err := p.Execute(ctx, a)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, expected context.Canceled", err)
		}
		if second.callCount != 0 {
			t.Error("step after cancellation should not run")
		}
	})
}
