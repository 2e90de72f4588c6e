package dataset

import (
	"math/rand"

	"costwise/domain/core"
)

// Split is a disjoint train/test partition of a dataset. The two subsets
// share the parent's column metadata and together cover every example.
type Split struct {
	Train *Dataset `json:"train"`
	Test  *Dataset `json:"test"`
	// TrainFraction is the requested train share, fixed at construction.
	TrainFraction float64 `json:"train_fraction"`
}

// Partition assigns each example to the train or test subset using the
// supplied random source. The source is injected rather than globally seeded
// so a given seed reproduces the same split regardless of call order
// elsewhere in the program.
func (d *Dataset) Partition(trainFraction float64, rng *rand.Rand) (Split, error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return Split{}, core.NewInvalidParameterError("train_fraction", "must be strictly between 0 and 1")
	}
	if rng == nil {
		return Split{}, core.NewInvalidParameterError("rng", "random source is required")
	}
	if len(d.Examples) < 2 {
		return Split{}, core.ErrInsufficientData
	}

	// Shuffle indices, then cut once. Every example lands in exactly one
	// subset and the original ordering within each subset is preserved.
	order := rng.Perm(len(d.Examples))
	cut := int(float64(len(d.Examples)) * trainFraction)
	if cut == 0 {
		cut = 1
	}
	if cut == len(d.Examples) {
		cut = len(d.Examples) - 1
	}

	inTrain := make([]bool, len(d.Examples))
	for _, idx := range order[:cut] {
		inTrain[idx] = true
	}

	train := &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    d.Name + "/train",
		Outcome: d.Outcome,
		Columns: d.Columns,
	}
	test := &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    d.Name + "/test",
		Outcome: d.Outcome,
		Columns: d.Columns,
	}
	for i, ex := range d.Examples {
		if inTrain[i] {
			train.Examples = append(train.Examples, ex)
		} else {
			test.Examples = append(test.Examples, ex)
		}
	}

	return Split{Train: train, Test: test, TrainFraction: trainFraction}, nil
}
