package costmodel

import (
	"testing"

	"costwise/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ReferenceEconomics(t *testing.T) {
	// $1200 outreach, $35k outcome, 75% efficacy: the reference operating
	// point used throughout the targeting reports.
	m, err := Build(1200, 35000, 0.75)
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.TrueNegative)
	assert.Equal(t, 0.0, m.TruePositive)
	assert.Equal(t, 1200.0, m.FalsePositive)
	assert.Equal(t, 7550.0, m.FalseNegative)
}

func TestBuild_NormalizationInvariant(t *testing.T) {
	cases := []struct {
		name             string
		intervention     float64
		outcome          float64
		efficacy         float64
	}{
		{"reference", 1200, 35000, 0.75},
		{"free intervention", 0, 10000, 0.5},
		{"cheap outcome", 50, 1000, 0.9},
		{"near break-even", 990, 10000, 0.9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Build(tc.intervention, tc.outcome, tc.efficacy)
			require.NoError(t, err)
			assert.True(t, m.Normalized(), "diagonal must be zero after normalization")
			assert.Equal(t, tc.intervention, m.FalsePositive)
			assert.Greater(t, m.FalseNegative, 0.0)
		})
	}
}

func TestBuild_RejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name         string
		intervention float64
		outcome      float64
		efficacy     float64
	}{
		{"negative intervention cost", -1, 35000, 0.75},
		{"negative outcome cost", 1200, -35000, 0.75},
		{"efficacy above one", 1200, 35000, 1.5},
		{"negative efficacy", 1200, 35000, -0.1},
		{"intervention cannot pay for itself", 35000, 1200, 0.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.intervention, tc.outcome, tc.efficacy)
			require.Error(t, err)
			assert.True(t, core.IsInvalidParameterError(err))
		})
	}
}

func TestAccounting_CarriesFullAmounts(t *testing.T) {
	econ := Economics{InterventionCost: 1200, OutcomeCost: 35000, EfficacyRate: 0.75}
	m := econ.Accounting()

	assert.Equal(t, 0.0, m.TrueNegative)
	assert.Equal(t, 1200.0, m.FalsePositive)
	assert.Equal(t, 35000.0, m.FalseNegative)
	assert.Equal(t, 1200+35000*0.75, m.TruePositive)
	assert.False(t, m.Normalized())
}

func TestWithRatio_AdjustsOnlyFalseNegative(t *testing.T) {
	m, err := Build(1200, 35000, 0.75)
	require.NoError(t, err)

	adjusted := m.WithRatio(10)
	assert.Equal(t, 12000.0, adjusted.FalseNegative)
	assert.Equal(t, m.FalsePositive, adjusted.FalsePositive)
	assert.InDelta(t, 10.0, adjusted.Ratio(), 1e-12)

	// Original is untouched.
	assert.Equal(t, 7550.0, m.FalseNegative)
}

func TestCost_QuadrantLookup(t *testing.T) {
	m := CostModel{TrueNegative: 1, FalsePositive: 2, FalseNegative: 3, TruePositive: 4}

	assert.Equal(t, 1.0, m.Cost(0, 0))
	assert.Equal(t, 2.0, m.Cost(0, 1))
	assert.Equal(t, 3.0, m.Cost(1, 0))
	assert.Equal(t, 4.0, m.Cost(1, 1))
}
