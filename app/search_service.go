package app

import (
	"context"
	"math"

	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/domain/decision"
	"costwise/internal"
	"costwise/ports"
)

// DefaultMaxIterations caps retrain cycles per search; each probe of a cost
// ratio retrains the classifier, so the cap bounds total training work.
const DefaultMaxIterations = 25

// SearchConfig parameterizes one budget-constrained threshold search.
type SearchConfig struct {
	Economics     costmodel.Economics `json:"economics"`
	TargetRate    float64             `json:"target_rate"`
	Tolerance     float64             `json:"tolerance"`
	MaxIterations int                 `json:"max_iterations"`
	Complexity    ports.Complexity    `json:"complexity"`
}

// SearchStep records one probed operating point.
type SearchStep struct {
	Ratio            float64 `json:"ratio"`
	InterventionRate float64 `json:"intervention_rate"`
}

// SearchResult is the winning operating point. Confusion and Report are
// computed on the test partition, never on the partition that drove the
// search, so the final numbers are out-of-sample.
type SearchResult struct {
	CostModel  costmodel.CostModel      `json:"cost_model"`
	Confusion  decision.ConfusionMatrix `json:"confusion"`
	Report     decision.Report          `json:"report"`
	SearchRate float64                  `json:"search_rate"`
	Iterations int                      `json:"iterations"`
	Steps      []SearchStep             `json:"steps"`
}

// SearchService adjusts the FN/FP penalty ratio of a cost model until the
// retrained classifier flags the target fraction of the population. The
// intervention rate is empirically non-decreasing in the ratio, so the
// search brackets the target and then bisects on the log-ratio scale.
type SearchService struct {
	eval   *EvaluationService
	logger *internal.Logger
}

// NewSearchService creates a threshold-search service.
func NewSearchService(eval *EvaluationService, logger *internal.Logger) *SearchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if eval == nil {
		eval = NewEvaluationService(logger)
	}
	return &SearchService{eval: eval, logger: logger}
}

// Search runs the bounded iterative refinement described above. It fails
// with core.ErrConvergenceFailure when the iteration cap is exhausted or the
// bracket cannot straddle the target, which happens when the trainer's
// rate/ratio relationship is not monotonic.
func (s *SearchService) Search(ctx context.Context, split dataset.Split, trainer ports.Trainer, cfg SearchConfig) (*SearchResult, error) {
	if cfg.TargetRate <= 0 || cfg.TargetRate >= 1 {
		return nil, core.NewInvalidParameterError("target_rate", "must be strictly between 0 and 1")
	}
	if cfg.Tolerance <= 0 {
		return nil, core.NewInvalidParameterError("tolerance", "must be positive")
	}
	if split.Train == nil || split.Test == nil {
		return nil, core.NewInvalidParameterError("split", "train and test partitions are required")
	}
	base, err := cfg.Economics.Build()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	st := &searchState{
		service: s,
		split:   split,
		trainer: trainer,
		cfg:     cfg,
		base:    base,
	}

	ratio, clf, err := st.run(ctx)
	if err != nil {
		return nil, err
	}

	// Final numbers come from the held-out partition.
	testCM, err := s.eval.Evaluate(ctx, clf, split.Test.Examples)
	if err != nil {
		return nil, err
	}

	winning := base.WithRatio(ratio)
	s.logger.Info("search converged: ratio %.3f, in-search rate %.4f, test rate %.4f",
		ratio, st.lastRate, testCM.InterventionRate())

	return &SearchResult{
		CostModel:  winning,
		Confusion:  testCM,
		Report:     decision.NewReport(testCM, cfg.Economics),
		SearchRate: st.lastRate,
		Iterations: st.iterations,
		Steps:      st.steps,
	}, nil
}

type searchState struct {
	service *SearchService
	split   dataset.Split
	trainer ports.Trainer
	cfg     SearchConfig
	base    costmodel.CostModel

	iterations int
	lastRate   float64
	steps      []SearchStep
}

// probe retrains at a candidate ratio and measures the intervention rate on
// the search partition. Every probe consumes one iteration from the cap.
func (st *searchState) probe(ctx context.Context, ratio float64) (float64, ports.Classifier, error) {
	if st.iterations >= st.cfg.MaxIterations {
		return 0, nil, core.NewConvergenceError(st.iterations, st.lastRate, st.cfg.TargetRate)
	}
	st.iterations++

	clf, err := st.trainer.Train(ctx, st.split.Train.Examples, st.base.WithRatio(ratio), st.cfg.Complexity)
	if err != nil {
		return 0, nil, err
	}
	cm, err := st.service.eval.Evaluate(ctx, clf, st.split.Train.Examples)
	if err != nil {
		return 0, nil, err
	}

	rate := cm.InterventionRate()
	st.lastRate = rate
	st.steps = append(st.steps, SearchStep{Ratio: ratio, InterventionRate: rate})
	st.service.logger.Debug("probe %d: ratio %.3f -> rate %.4f", st.iterations, ratio, rate)

	return rate, clf, nil
}

func (st *searchState) inTolerance(rate float64) bool {
	return math.Abs(rate-st.cfg.TargetRate) <= st.cfg.Tolerance
}

// run brackets the target rate and bisects the log-ratio until the rate
// lands inside tolerance.
func (st *searchState) run(ctx context.Context) (float64, ports.Classifier, error) {
	start := st.base.Ratio()
	if math.IsInf(start, 1) || start <= 0 {
		// A degenerate FP cost leaves nothing to bisect over.
		return 0, nil, core.NewInvalidParameterError("cost_model", "FN/FP ratio must be positive and finite")
	}

	rate, clf, err := st.probe(ctx, start)
	if err != nil {
		return 0, nil, err
	}
	if st.inTolerance(rate) {
		return start, clf, nil
	}

	// Expand a geometric bracket until the target rate is straddled.
	lo, hi := start, start
	loRate, hiRate := rate, rate
	for loRate > st.cfg.TargetRate {
		lo /= 4
		if loRate, clf, err = st.probe(ctx, lo); err != nil {
			return 0, nil, err
		}
		if st.inTolerance(loRate) {
			return lo, clf, nil
		}
	}
	for hiRate < st.cfg.TargetRate {
		hi *= 4
		if hiRate, clf, err = st.probe(ctx, hi); err != nil {
			return 0, nil, err
		}
		if st.inTolerance(hiRate) {
			return hi, clf, nil
		}
	}

	// Bisect on the log scale. A bracket that stops narrowing the rate gap
	// runs into the iteration cap and surfaces as a convergence failure.
	for {
		mid := math.Sqrt(lo * hi)
		rate, clf, err = st.probe(ctx, mid)
		if err != nil {
			return 0, nil, err
		}
		if st.inTolerance(rate) {
			return mid, clf, nil
		}
		if rate > st.cfg.TargetRate {
			hi = mid
		} else {
			lo = mid
		}
	}
}
