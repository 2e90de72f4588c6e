package decision

import (
	"math"

	"costwise/domain/costmodel"

	"gonum.org/v1/gonum/stat/distuv"
)

// RateInterval is a Wilson score confidence interval on the intervention rate.
type RateInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Report is a derived, read-only view over a ConfusionMatrix and the unit
// economics it was evaluated under. It is a pure function of its inputs and
// is recomputed on demand rather than persisted as state.
type Report struct {
	Confusion ConfusionMatrix     `json:"confusion"`
	Economics costmodel.Economics `json:"economics"`

	TotalCost          float64      `json:"total_cost"`
	InterventionCount  int          `json:"intervention_count"`
	InterventionRate   float64      `json:"intervention_rate"`
	RateInterval       RateInterval `json:"rate_interval"`
	Accuracy           float64      `json:"accuracy"`
	TruePositiveRate   float64      `json:"true_positive_rate"`
	FalsePositiveRate  float64      `json:"false_positive_rate"`
	BaselineCost       float64      `json:"baseline_cost"`
	NetValueVsBaseline float64      `json:"net_value_vs_baseline"`
}

// TotalCost prices a confusion matrix under an arbitrary cost matrix.
func TotalCost(m ConfusionMatrix, costs costmodel.CostModel) float64 {
	return float64(m.TrueNegative)*costs.TrueNegative +
		float64(m.FalsePositive)*costs.FalsePositive +
		float64(m.FalseNegative)*costs.FalseNegative +
		float64(m.TruePositive)*costs.TruePositive
}

// NewReport derives the full evaluation view from a confusion matrix and the
// unit economics. TotalCost is priced under the accounting matrix (full
// amounts, not the normalized training loss); the baseline is the do-nothing
// policy in which every true positive incurs the full outcome cost.
func NewReport(m ConfusionMatrix, econ costmodel.Economics) Report {
	total := m.Total()

	r := Report{
		Confusion:         m,
		Economics:         econ,
		TotalCost:         TotalCost(m, econ.Accounting()),
		InterventionCount: m.InterventionCount(),
		InterventionRate:  m.InterventionRate(),
		BaselineCost:      float64(m.Positives()) * econ.OutcomeCost,
	}
	r.NetValueVsBaseline = r.BaselineCost - r.TotalCost
	r.RateInterval = wilsonInterval(m.InterventionCount(), total, 0.95)

	if total > 0 {
		r.Accuracy = float64(m.TrueNegative+m.TruePositive) / float64(total)
	}
	if p := m.Positives(); p > 0 {
		r.TruePositiveRate = float64(m.TruePositive) / float64(p)
	}
	if n := m.Negatives(); n > 0 {
		r.FalsePositiveRate = float64(m.FalsePositive) / float64(n)
	}

	return r
}

// wilsonInterval computes the Wilson score interval for k successes out of n.
func wilsonInterval(k, n int, level float64) RateInterval {
	if n == 0 {
		return RateInterval{Level: level}
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + level/2)
	p := float64(k) / float64(n)
	nf := float64(n)

	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	margin := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom

	return RateInterval{
		Lower: math.Max(0, center-margin),
		Upper: math.Min(1, center+margin),
		Level: level,
	}
}
