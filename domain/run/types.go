package run

import (
	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/decision"
)

// Run records one completed threshold search: the budget it was asked to
// hit, the winning loss matrix, and the out-of-sample evaluation of the
// resulting classifier.
type Run struct {
	ID         core.RunID          `json:"id"`
	Dataset    string              `json:"dataset"`
	TargetRate float64             `json:"target_rate"`
	Tolerance  float64             `json:"tolerance"`
	Economics  costmodel.Economics `json:"economics"`
	CostModel  costmodel.CostModel `json:"cost_model"`
	Iterations int                 `json:"iterations"`

	// Confusion and Report are computed on the held-out test partition,
	// never on the partition that drove the search.
	Confusion decision.ConfusionMatrix `json:"confusion"`
	Report    decision.Report          `json:"report"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// New creates a run record with a fresh ID and timestamp.
func New(dataset string, targetRate, tolerance float64) *Run {
	return &Run{
		ID:         core.RunID(core.NewID()),
		Dataset:    dataset,
		TargetRate: targetRate,
		Tolerance:  tolerance,
		CreatedAt:  core.Now(),
	}
}
