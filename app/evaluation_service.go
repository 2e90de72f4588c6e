package app

import (
	"context"

	"costwise/domain/dataset"
	"costwise/domain/decision"
	"costwise/internal"
	apperrors "costwise/internal/errors"
	"costwise/ports"
)

// EvaluationService runs a classifier over a labeled subset and tabulates
// the confusion matrix. Evaluation is deterministic for a deterministic
// classifier: every example is scored exactly once, in order.
type EvaluationService struct {
	logger *internal.Logger
}

// NewEvaluationService creates an evaluation service.
func NewEvaluationService(logger *internal.Logger) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{logger: logger}
}

// Evaluate scores every example through the classifier and increments the
// matching quadrant. The four counts always sum to len(examples); an empty
// quadrant is a valid zero count, not an error.
func (s *EvaluationService) Evaluate(ctx context.Context, clf ports.Classifier, examples []dataset.Example) (decision.ConfusionMatrix, error) {
	var m decision.ConfusionMatrix

	for i, ex := range examples {
		if err := ctx.Err(); err != nil {
			return decision.ConfusionMatrix{}, err
		}
		predicted, err := clf.PredictLabel(ex.Features)
		if err != nil {
			return decision.ConfusionMatrix{}, apperrors.Wrapf(err, "predicting example %d", i)
		}
		m.Observe(ex.Label, predicted)
	}

	s.logger.Debug("evaluated %d examples: tn=%d fp=%d fn=%d tp=%d",
		m.Total(), m.TrueNegative, m.FalsePositive, m.FalseNegative, m.TruePositive)

	return m, nil
}
