package ports

// Classifier is the single capability the evaluation pipeline needs from a
// trained model: map a feature vector to a predicted label in {0, 1}.
// Implementations must be deterministic once trained and must return
// core.ErrUntrainedModel when invoked before training completes.
type Classifier interface {
	PredictLabel(features []float64) (int, error)
}
