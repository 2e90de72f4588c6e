package decision

// ConfusionMatrix tabulates the four outcome counts of a binary classifier
// against a labeled evaluation set. Counts are accumulated with Observe and
// the matrix is treated as immutable once an evaluation completes.
type ConfusionMatrix struct {
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
	TruePositive  int `json:"true_positive"`
}

// Observe increments the quadrant matching an observed (true label,
// predicted label) pair. Labels are restricted to {0, 1}.
func (m *ConfusionMatrix) Observe(trueLabel, predicted int) {
	switch {
	case trueLabel == 0 && predicted == 0:
		m.TrueNegative++
	case trueLabel == 0 && predicted == 1:
		m.FalsePositive++
	case trueLabel == 1 && predicted == 0:
		m.FalseNegative++
	default:
		m.TruePositive++
	}
}

// Total returns the number of evaluated examples.
func (m ConfusionMatrix) Total() int {
	return m.TrueNegative + m.FalsePositive + m.FalseNegative + m.TruePositive
}

// InterventionCount returns how many examples were flagged for intervention,
// i.e. predicted positive regardless of the true label.
func (m ConfusionMatrix) InterventionCount() int {
	return m.FalsePositive + m.TruePositive
}

// InterventionRate returns the flagged fraction of the evaluated population.
// A matrix with no observations has rate zero.
func (m ConfusionMatrix) InterventionRate() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.InterventionCount()) / float64(total)
}

// Positives returns the number of examples whose true label is positive.
func (m ConfusionMatrix) Positives() int {
	return m.TruePositive + m.FalseNegative
}

// Negatives returns the number of examples whose true label is negative.
func (m ConfusionMatrix) Negatives() int {
	return m.TrueNegative + m.FalsePositive
}
