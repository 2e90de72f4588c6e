package decision

import (
	"testing"

	"costwise/domain/costmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalCost_ReferenceMatrix(t *testing.T) {
	// The reference evaluation from the targeting report: 4056 needless
	// outreaches, 1796 missed outcomes, 945 correctly flagged cases.
	m := ConfusionMatrix{
		TrueNegative:  93203,
		FalsePositive: 4056,
		FalseNegative: 1796,
		TruePositive:  945,
	}
	costs := costmodel.CostModel{
		TrueNegative:  0,
		FalsePositive: 1200,
		FalseNegative: 35000,
		TruePositive:  8750,
	}

	want := 4056*1200.0 + 1796*35000.0 + 945*8750.0
	assert.Equal(t, want, TotalCost(m, costs))
}

func TestTotalCost_NonNegativeForNonNegativeCosts(t *testing.T) {
	m := ConfusionMatrix{TrueNegative: 10, FalsePositive: 7, FalseNegative: 3, TruePositive: 5}
	costs := costmodel.CostModel{TrueNegative: 0, FalsePositive: 100, FalseNegative: 900, TruePositive: 50}

	assert.GreaterOrEqual(t, TotalCost(m, costs), 0.0)
	assert.Equal(t, 0.0, TotalCost(ConfusionMatrix{}, costs))
}

func TestNewReport_DerivedMetrics(t *testing.T) {
	m := ConfusionMatrix{TrueNegative: 80, FalsePositive: 10, FalseNegative: 4, TruePositive: 6}
	econ := costmodel.Economics{InterventionCost: 100, OutcomeCost: 1000, EfficacyRate: 0.5}

	r := NewReport(m, econ)

	assert.Equal(t, 16, r.InterventionCount)
	assert.InDelta(t, 0.16, r.InterventionRate, 1e-12)
	assert.InDelta(t, 0.86, r.Accuracy, 1e-12)
	assert.InDelta(t, 0.6, r.TruePositiveRate, 1e-12)
	assert.InDelta(t, 10.0/90.0, r.FalsePositiveRate, 1e-12)

	// Accounting: 10 needless outreaches, 4 full outcomes, 6 treated cases.
	wantTotal := 10*100.0 + 4*1000.0 + 6*(100+1000*0.5)
	assert.InDelta(t, wantTotal, r.TotalCost, 1e-9)

	// Do-nothing baseline: all 10 positives incur the full outcome cost.
	assert.InDelta(t, 10000.0, r.BaselineCost, 1e-9)
	assert.InDelta(t, r.BaselineCost-r.TotalCost, r.NetValueVsBaseline, 1e-9)
}

func TestNewReport_RateIntervalBracketsPointEstimate(t *testing.T) {
	m := ConfusionMatrix{TrueNegative: 900, FalsePositive: 40, FalseNegative: 30, TruePositive: 30}
	r := NewReport(m, costmodel.Economics{InterventionCost: 1, OutcomeCost: 10, EfficacyRate: 0.5})

	require.Equal(t, 0.95, r.RateInterval.Level)
	assert.Less(t, r.RateInterval.Lower, r.InterventionRate)
	assert.Greater(t, r.RateInterval.Upper, r.InterventionRate)
	assert.GreaterOrEqual(t, r.RateInterval.Lower, 0.0)
	assert.LessOrEqual(t, r.RateInterval.Upper, 1.0)
}

func TestNewReport_EmptyMatrix(t *testing.T) {
	r := NewReport(ConfusionMatrix{}, costmodel.Economics{InterventionCost: 1, OutcomeCost: 10, EfficacyRate: 0.5})

	assert.Equal(t, 0.0, r.TotalCost)
	assert.Equal(t, 0.0, r.Accuracy)
	assert.Equal(t, 0.0, r.InterventionRate)
	assert.Equal(t, 0.0, r.NetValueVsBaseline)
}
