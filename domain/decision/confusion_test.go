package decision

import (
	"testing"
)

func TestConfusionMatrix_Observe(t *testing.T) {
	var m ConfusionMatrix

	pairs := []struct{ trueLabel, predicted, count int }{
		{0, 0, 5},
		{0, 1, 3},
		{1, 0, 2},
		{1, 1, 4},
	}
	for _, p := range pairs {
		for i := 0; i < p.count; i++ {
			m.Observe(p.trueLabel, p.predicted)
		}
	}

	if m.TrueNegative != 5 || m.FalsePositive != 3 || m.FalseNegative != 2 || m.TruePositive != 4 {
		t.Fatalf("unexpected quadrant counts: %+v", m)
	}
	if m.Total() != 14 {
		t.Errorf("Total() = %d, want 14", m.Total())
	}
	if m.InterventionCount() != 7 {
		t.Errorf("InterventionCount() = %d, want 7", m.InterventionCount())
	}
	if got := m.InterventionRate(); got != 0.5 {
		t.Errorf("InterventionRate() = %f, want 0.5", got)
	}
}

func TestConfusionMatrix_CountsSumToSubsetSize(t *testing.T) {
	var m ConfusionMatrix
	labels := []int{0, 1, 1, 0, 0, 1, 0, 0}
	preds := []int{0, 1, 0, 1, 0, 1, 0, 1}

	for i := range labels {
		m.Observe(labels[i], preds[i])
	}

	if m.Total() != len(labels) {
		t.Errorf("counts sum to %d, want %d", m.Total(), len(labels))
	}
}

func TestConfusionMatrix_EmptyIsValid(t *testing.T) {
	var m ConfusionMatrix
	if m.Total() != 0 {
		t.Errorf("empty matrix Total() = %d, want 0", m.Total())
	}
	if m.InterventionRate() != 0 {
		t.Errorf("empty matrix InterventionRate() = %f, want 0", m.InterventionRate())
	}
}
