package app

import (
	"context"
	"errors"
	"testing"

	"costwise/domain/core"
	"costwise/domain/dataset"
	"costwise/internal/testkit"
)

func TestEvaluate_CountsSumToSubsetSize(t *testing.T) {
	examples := testkit.GenerateCohort(testkit.DefaultCohortConfig()).Examples
	clf := &testkit.ThresholdClassifier{Cutoff: 0.5, Trained: true}
	svc := NewEvaluationService(nil)

	m, err := svc.Evaluate(context.Background(), clf, examples)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if m.Total() != len(examples) {
		t.Fatalf("counts sum to %d, want %d", m.Total(), len(examples))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	examples := testkit.GenerateCohort(testkit.DefaultCohortConfig()).Examples
	clf := &testkit.ThresholdClassifier{Cutoff: 1.0, Trained: true}
	svc := NewEvaluationService(nil)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, clf, examples)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	second, err := svc.Evaluate(ctx, clf, examples)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if first != second {
		t.Fatalf("re-evaluation produced different counts: %+v vs %+v", first, second)
	}
}

func TestEvaluate_SurfacesUntrainedModel(t *testing.T) {
	svc := NewEvaluationService(nil)
	clf := &testkit.ThresholdClassifier{Trained: false}

	_, err := svc.Evaluate(context.Background(), clf, []dataset.Example{{Features: []float64{1}}})
	if !errors.Is(err, core.ErrUntrainedModel) {
		t.Fatalf("expected ErrUntrainedModel, got %v", err)
	}
}

func TestEvaluate_EmptySubset(t *testing.T) {
	svc := NewEvaluationService(nil)
	clf := &testkit.ThresholdClassifier{Cutoff: 0, Trained: true}

	m, err := svc.Evaluate(context.Background(), clf, nil)
	if err != nil {
		t.Fatalf("Evaluate failed on empty subset: %v", err)
	}
	if m.Total() != 0 {
		t.Fatalf("empty subset produced %d counts", m.Total())
	}
}
