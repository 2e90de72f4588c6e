package app

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"costwise/adapters/tree"
	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/internal/testkit"
	"costwise/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cohortSplit(t *testing.T, seed int64) dataset.Split {
	t.Helper()
	cfg := testkit.DefaultCohortConfig()
	cfg.Seed = seed
	split, err := testkit.GenerateCohort(cfg).Partition(0.7, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return split
}

func referenceEconomics() costmodel.Economics {
	return costmodel.Economics{InterventionCost: 1200, OutcomeCost: 35000, EfficacyRate: 0.75}
}

func TestSearch_ConvergesToBudget(t *testing.T) {
	split := cohortSplit(t, 42)
	svc := NewSearchService(nil, nil)

	result, err := svc.Search(context.Background(), split, &testkit.RatioTrainer{}, SearchConfig{
		Economics:  referenceEconomics(),
		TargetRate: 0.05,
		Tolerance:  0.005,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Iterations, DefaultMaxIterations)
	assert.InDelta(t, 0.05, result.SearchRate, 0.005)
	assert.NotEmpty(t, result.Steps)

	// The winning matrix keeps the FP entry and moves only the ratio.
	assert.Equal(t, 1200.0, result.CostModel.FalsePositive)
	assert.InDelta(t, result.CostModel.Ratio()*1200, result.CostModel.FalseNegative, 1e-9)

	// The final report is priced on the held-out partition.
	assert.Equal(t, split.Test.Len(), result.Confusion.Total())
	assert.Equal(t, result.Confusion.InterventionCount(), result.Report.InterventionCount)
}

func TestSearch_OutOfSampleRateTracksTarget(t *testing.T) {
	split := cohortSplit(t, 7)
	svc := NewSearchService(nil, nil)

	result, err := svc.Search(context.Background(), split, &testkit.RatioTrainer{}, SearchConfig{
		Economics:  referenceEconomics(),
		TargetRate: 0.10,
		Tolerance:  0.005,
	})
	require.NoError(t, err)

	// Train/test come from the same cohort, so the out-of-sample rate lands
	// near the target even though only the train rate is controlled.
	assert.InDelta(t, 0.10, result.Confusion.InterventionRate(), 0.05)
}

func TestSearch_ConvergenceFailureAtIterationCap(t *testing.T) {
	split := cohortSplit(t, 11)
	svc := NewSearchService(nil, nil)

	// A trainer that always flags half the population can never reach 5%.
	_, err := svc.Search(context.Background(), split, &testkit.ConstantRateTrainer{Rate: 0.5}, SearchConfig{
		Economics:  referenceEconomics(),
		TargetRate: 0.05,
		Tolerance:  0.005,
	})
	require.Error(t, err)
	assert.True(t, core.IsConvergenceError(err), "got %v", err)
}

func TestSearch_MonotonicityOfInterventionCount(t *testing.T) {
	split := cohortSplit(t, 13)
	eval := NewEvaluationService(nil)
	trainer := &testkit.RatioTrainer{}
	ctx := context.Background()

	base, err := referenceEconomics().Build()
	require.NoError(t, err)

	prev := -1
	for _, scale := range []float64{0.5, 1, 2, 4, 8, 16, 32} {
		costs := base.WithRatio(base.Ratio() * scale)
		clf, err := trainer.Train(ctx, split.Train.Examples, costs, ports.Complexity{})
		require.NoError(t, err)
		m, err := eval.Evaluate(ctx, clf, split.Train.Examples)
		require.NoError(t, err)

		count := m.InterventionCount()
		assert.GreaterOrEqual(t, count, prev,
			"raising the FN penalty must not reduce interventions (scale %.1f)", scale)
		prev = count
	}
}

func TestSearch_InvalidParameters(t *testing.T) {
	split := cohortSplit(t, 3)
	svc := NewSearchService(nil, nil)
	ctx := context.Background()
	trainer := &testkit.RatioTrainer{}

	cases := []struct {
		name string
		cfg  SearchConfig
	}{
		{"zero target", SearchConfig{Economics: referenceEconomics(), TargetRate: 0, Tolerance: 0.05}},
		{"unit target", SearchConfig{Economics: referenceEconomics(), TargetRate: 1, Tolerance: 0.05}},
		{"zero tolerance", SearchConfig{Economics: referenceEconomics(), TargetRate: 0.05, Tolerance: 0}},
		{"bad economics", SearchConfig{Economics: costmodel.Economics{InterventionCost: -1}, TargetRate: 0.05, Tolerance: 0.05}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Search(ctx, split, trainer, tc.cfg)
			require.Error(t, err)
			assert.True(t, core.IsInvalidParameterError(err), "got %v", err)
		})
	}

	_, err := svc.Search(ctx, dataset.Split{}, trainer, SearchConfig{
		Economics: referenceEconomics(), TargetRate: 0.05, Tolerance: 0.05,
	})
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameterError(err))
}

func TestSearch_StepTraceMatchesIterations(t *testing.T) {
	split := cohortSplit(t, 19)
	svc := NewSearchService(nil, nil)

	result, err := svc.Search(context.Background(), split, &testkit.RatioTrainer{Pivot: 50}, SearchConfig{
		Economics:  referenceEconomics(),
		TargetRate: 0.2,
		Tolerance:  0.01,
	})
	require.NoError(t, err)

	for _, step := range result.Steps {
		assert.False(t, math.IsNaN(step.InterventionRate))
		assert.GreaterOrEqual(t, step.Ratio, 0.0)
	}
	assert.Equal(t, result.Iterations, len(result.Steps))
}

func TestSearch_RealTreeTrainerConvergesOrSurfacesFailure(t *testing.T) {
	split := cohortSplit(t, 23)
	svc := NewSearchService(nil, nil)

	result, err := svc.Search(context.Background(), split, tree.NewTrainer(), SearchConfig{
		Economics:  referenceEconomics(),
		TargetRate: 0.05,
		Tolerance:  0.01,
		Complexity: ports.Complexity{MaxDepth: 4, MinLeafSize: 25},
	})

	// Tree intervention rates move in discrete jumps, so either outcome is
	// legitimate: an in-tolerance operating point, or a surfaced failure.
	if err != nil {
		assert.True(t, core.IsConvergenceError(err), "got %v", err)
		return
	}
	assert.InDelta(t, 0.05, result.SearchRate, 0.01)
	assert.Equal(t, split.Test.Len(), result.Confusion.Total())
}
