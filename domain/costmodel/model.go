package costmodel

import (
	"math"

	"costwise/domain/core"
)

// CostModel is the 2x2 asymmetric loss matrix handed to classifier trainers,
// indexed by (true label, predicted label). A model produced by Build is
// normalized: both diagonal entries are zero, so the matrix encodes only the
// relative penalty of each error type.
type CostModel struct {
	TrueNegative  float64 `json:"true_negative"`
	TruePositive  float64 `json:"true_positive"`
	FalsePositive float64 `json:"false_positive"`
	FalseNegative float64 `json:"false_negative"`
}

// Economics holds the real-world unit costs a loss matrix is derived from.
type Economics struct {
	// InterventionCost is charged every time the positive class is predicted.
	InterventionCost float64 `json:"intervention_cost"`
	// OutcomeCost is the full cost of an unaddressed bad outcome.
	OutcomeCost float64 `json:"outcome_cost"`
	// EfficacyRate is the assumed fractional reduction in outcome cost when
	// a true positive receives the intervention.
	EfficacyRate float64 `json:"efficacy_rate"`
}

// Validate checks the unit-cost constraints.
func (e Economics) Validate() error {
	if e.InterventionCost < 0 || math.IsNaN(e.InterventionCost) || math.IsInf(e.InterventionCost, 0) {
		return core.NewInvalidParameterError("intervention_cost", "must be a non-negative finite amount")
	}
	if e.OutcomeCost < 0 || math.IsNaN(e.OutcomeCost) || math.IsInf(e.OutcomeCost, 0) {
		return core.NewInvalidParameterError("outcome_cost", "must be a non-negative finite amount")
	}
	if e.EfficacyRate < 0 || e.EfficacyRate > 1 || math.IsNaN(e.EfficacyRate) {
		return core.NewInvalidParameterError("efficacy_rate", "must be within [0, 1]")
	}
	return nil
}

// Build derives the normalized loss matrix from unit economics.
//
// A flagged positive incurs the intervention plus the residual outcome cost;
// subtracting that from both positive-row entries leaves zero on the diagonal
// and a FalseNegative entry equal to what a correct flag would have saved.
// Build rejects economics under which flagging a positive saves nothing,
// since the resulting matrix could not prefer any intervention.
func Build(interventionCost, outcomeCost, efficacyRate float64) (CostModel, error) {
	econ := Economics{
		InterventionCost: interventionCost,
		OutcomeCost:      outcomeCost,
		EfficacyRate:     efficacyRate,
	}
	return econ.Build()
}

// Build derives the normalized loss matrix from e. See the package-level Build.
func (e Economics) Build() (CostModel, error) {
	if err := e.Validate(); err != nil {
		return CostModel{}, err
	}

	flagged := e.InterventionCost + e.OutcomeCost*e.EfficacyRate
	missed := e.OutcomeCost

	fn := missed - flagged
	if fn <= 0 {
		return CostModel{}, core.NewInvalidParameterError("efficacy_rate",
			"intervention does not pay for itself at these unit costs")
	}

	return CostModel{
		TrueNegative:  0,
		TruePositive:  0,
		FalsePositive: e.InterventionCost,
		FalseNegative: fn,
	}, nil
}

// Accounting returns the raw, un-normalized cost matrix used for report
// totals: every quadrant carries the full amount actually spent, including
// costs incurred regardless of the prediction.
func (e Economics) Accounting() CostModel {
	return CostModel{
		TrueNegative:  0,
		TruePositive:  e.InterventionCost + e.OutcomeCost*e.EfficacyRate,
		FalsePositive: e.InterventionCost,
		FalseNegative: e.OutcomeCost,
	}
}

// Ratio returns the FalseNegative/FalsePositive penalty ratio. The intervention
// rate of a trained classifier is non-decreasing in this ratio, which is what
// the threshold search bisects over.
func (m CostModel) Ratio() float64 {
	if m.FalsePositive == 0 {
		return math.Inf(1)
	}
	return m.FalseNegative / m.FalsePositive
}

// WithRatio returns a copy of m whose FalseNegative entry is scaled so that
// the FN/FP ratio equals r. The FalsePositive entry is left untouched.
func (m CostModel) WithRatio(r float64) CostModel {
	out := m
	out.FalseNegative = m.FalsePositive * r
	return out
}

// Normalized reports whether both diagonal entries are zero.
func (m CostModel) Normalized() bool {
	return m.TrueNegative == 0 && m.TruePositive == 0
}

// Cost returns the matrix entry for an observed (true label, predicted label)
// pair. Labels are restricted to {0, 1}.
func (m CostModel) Cost(trueLabel, predicted int) float64 {
	switch {
	case trueLabel == 0 && predicted == 0:
		return m.TrueNegative
	case trueLabel == 0 && predicted == 1:
		return m.FalsePositive
	case trueLabel == 1 && predicted == 0:
		return m.FalseNegative
	default:
		return m.TruePositive
	}
}
