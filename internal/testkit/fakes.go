package testkit

import (
	"context"
	"sort"
	"sync"

	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/domain/run"
	"costwise/ports"
)

// ThresholdClassifier flags every example whose first feature is at or above
// Cutoff. It is deterministic and stateless, which makes confusion-matrix
// idempotence checkable without a real trainer.
type ThresholdClassifier struct {
	Cutoff  float64
	Trained bool
}

// PredictLabel implements ports.Classifier.
func (c *ThresholdClassifier) PredictLabel(features []float64) (int, error) {
	if !c.Trained {
		return 0, core.ErrUntrainedModel
	}
	if len(features) == 0 {
		return 0, core.NewInvalidParameterError("features", "empty feature vector")
	}
	if features[0] >= c.Cutoff {
		return 1, nil
	}
	return 0, nil
}

// RatioTrainer is a fake trainer whose intervention rate is a strictly
// increasing function of the FN/FP cost ratio: rate = ratio/(ratio+Pivot).
// It picks the cutoff as the matching quantile of the first feature, so the
// trained classifier reproduces that rate on its own training set up to
// 1/len(examples) granularity.
type RatioTrainer struct {
	// Pivot is the ratio at which half the population is flagged.
	Pivot float64
}

// Train implements ports.Trainer.
func (t *RatioTrainer) Train(ctx context.Context, examples []dataset.Example, costs costmodel.CostModel, params ports.Complexity) (ports.Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, core.ErrInsufficientData
	}

	pivot := t.Pivot
	if pivot <= 0 {
		pivot = 100
	}
	ratio := costs.Ratio()
	rate := ratio / (ratio + pivot)

	scores := make([]float64, len(examples))
	for i, ex := range examples {
		scores[i] = ex.Features[0]
	}
	sort.Float64s(scores)

	// Flag the top rate-fraction of scores.
	idx := int(float64(len(scores)) * (1 - rate))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	if idx < 0 {
		idx = 0
	}

	return &ThresholdClassifier{Cutoff: scores[idx], Trained: true}, nil
}

// ConstantRateTrainer ignores the cost matrix entirely and always flags the
// same fraction, which makes any target outside its rate unreachable.
type ConstantRateTrainer struct {
	Rate float64
}

// Train implements ports.Trainer.
func (t *ConstantRateTrainer) Train(ctx context.Context, examples []dataset.Example, costs costmodel.CostModel, params ports.Complexity) (ports.Classifier, error) {
	if len(examples) == 0 {
		return nil, core.ErrInsufficientData
	}

	scores := make([]float64, len(examples))
	for i, ex := range examples {
		scores[i] = ex.Features[0]
	}
	sort.Float64s(scores)

	idx := int(float64(len(scores)) * (1 - t.Rate))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return &ThresholdClassifier{Cutoff: scores[idx], Trained: true}, nil
}

// InMemoryRunRepository is a map-backed ports.RunRepository for tests.
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*run.Run
	seen []core.RunID
}

// NewInMemoryRunRepository creates an empty repository.
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*run.Run)}
}

// Create implements ports.RunRepository.
func (r *InMemoryRunRepository) Create(ctx context.Context, rec *run.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[rec.ID] = rec
	r.seen = append(r.seen, rec.ID)
	return nil
}

// GetByID implements ports.RunRepository.
func (r *InMemoryRunRepository) GetByID(ctx context.Context, id core.RunID) (*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.runs[id]
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}
	return rec, nil
}

// ListRecent implements ports.RunRepository.
func (r *InMemoryRunRepository) ListRecent(ctx context.Context, limit int) ([]*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*run.Run, 0, limit)
	for i := len(r.seen) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[r.seen[i]])
	}
	return out, nil
}

var (
	_ ports.Classifier    = (*ThresholdClassifier)(nil)
	_ ports.Trainer       = (*RatioTrainer)(nil)
	_ ports.Trainer       = (*ConstantRateTrainer)(nil)
	_ ports.RunRepository = (*InMemoryRunRepository)(nil)
)
