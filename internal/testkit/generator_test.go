package testkit

import (
	"testing"
)

func TestGenerateCohort_Seeded(t *testing.T) {
	cfg := DefaultCohortConfig()
	first := GenerateCohort(cfg)
	second := GenerateCohort(cfg)

	if first.Len() != cfg.Size || second.Len() != cfg.Size {
		t.Fatalf("cohort sizes %d/%d, want %d", first.Len(), second.Len(), cfg.Size)
	}
	for i := range first.Examples {
		if first.Examples[i].Label != second.Examples[i].Label ||
			first.Examples[i].Features[0] != second.Examples[i].Features[0] {
			t.Fatalf("seeded cohorts diverge at example %d", i)
		}
	}
}

func TestGenerateCohort_HasBothClasses(t *testing.T) {
	d := GenerateCohort(DefaultCohortConfig())

	rate := d.PositiveRate()
	if rate <= 0.02 || rate >= 0.6 {
		t.Fatalf("positive rate %.3f outside plausible cohort range", rate)
	}
}
