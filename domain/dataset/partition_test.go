package dataset

import (
	"math/rand"
	"testing"

	"costwise/domain/core"
)

func syntheticDataset(n int) *Dataset {
	d := &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    "synthetic",
		Outcome: "flagged",
		Columns: []ColumnMeta{{Name: "score", Kind: KindNumeric}},
	}
	for i := 0; i < n; i++ {
		d.Examples = append(d.Examples, Example{
			Features: []float64{float64(i)},
			Label:    i % 3 % 2,
		})
	}
	return d
}

func TestPartition_DisjointAndCovering(t *testing.T) {
	d := syntheticDataset(100)
	split, err := d.Partition(0.7, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	if got := split.Train.Len() + split.Test.Len(); got != d.Len() {
		t.Fatalf("partition does not cover dataset: %d train + %d test != %d",
			split.Train.Len(), split.Test.Len(), d.Len())
	}
	if split.Train.Len() != 70 {
		t.Errorf("train size = %d, want 70", split.Train.Len())
	}

	// Feature values are unique in the synthetic set, so overlap detection
	// reduces to value membership.
	seen := make(map[float64]bool)
	for _, ex := range split.Train.Examples {
		seen[ex.Features[0]] = true
	}
	for _, ex := range split.Test.Examples {
		if seen[ex.Features[0]] {
			t.Fatalf("example %v appears in both partitions", ex.Features)
		}
	}
}

func TestPartition_DeterministicForFixedSeed(t *testing.T) {
	d := syntheticDataset(200)

	first, err := d.Partition(0.8, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	second, err := d.Partition(0.8, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	if len(first.Train.Examples) != len(second.Train.Examples) {
		t.Fatalf("seeded partitions differ in size")
	}
	for i := range first.Train.Examples {
		if first.Train.Examples[i].Features[0] != second.Train.Examples[i].Features[0] {
			t.Fatalf("seeded partitions diverge at train index %d", i)
		}
	}
}

func TestPartition_RejectsBadInputs(t *testing.T) {
	d := syntheticDataset(10)
	rng := rand.New(rand.NewSource(1))

	if _, err := d.Partition(0, rng); !core.IsInvalidParameterError(err) {
		t.Errorf("expected invalid parameter for zero fraction, got %v", err)
	}
	if _, err := d.Partition(1, rng); !core.IsInvalidParameterError(err) {
		t.Errorf("expected invalid parameter for unit fraction, got %v", err)
	}
	if _, err := d.Partition(0.5, nil); !core.IsInvalidParameterError(err) {
		t.Errorf("expected invalid parameter for nil rng, got %v", err)
	}

	tiny := syntheticDataset(1)
	if _, err := tiny.Partition(0.5, rng); err == nil {
		t.Errorf("expected error for single-example dataset")
	}
}
