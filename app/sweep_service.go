package app

import (
	"context"

	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/domain/decision"
	"costwise/internal"
	"costwise/ports"

	"github.com/montanaflynn/stats"
)

// SweepConfig enumerates the economics grid for a sensitivity analysis: one
// retrain-and-evaluate cycle per (intervention cost, efficacy rate) pair at
// a fixed outcome cost.
type SweepConfig struct {
	OutcomeCost       float64          `json:"outcome_cost"`
	InterventionCosts []float64        `json:"intervention_costs"`
	EfficacyRates     []float64        `json:"efficacy_rates"`
	Complexity        ports.Complexity `json:"complexity"`
}

// SweepCell is one evaluated grid point. Skipped marks economics under which
// no loss matrix could be built (the intervention cannot pay for itself).
type SweepCell struct {
	Economics costmodel.Economics `json:"economics"`
	Report    decision.Report     `json:"report,omitempty"`
	Skipped   bool                `json:"skipped,omitempty"`
	Reason    string              `json:"reason,omitempty"`
}

// SweepSummary aggregates the evaluated cells.
type SweepSummary struct {
	Cells           int     `json:"cells"`
	Skipped         int     `json:"skipped"`
	MinTotalCost    float64 `json:"min_total_cost"`
	MedianTotalCost float64 `json:"median_total_cost"`
	MaxTotalCost    float64 `json:"max_total_cost"`
	BestNetValue    float64 `json:"best_net_value"`
}

// SweepResult is the full sensitivity analysis output.
type SweepResult struct {
	Cells   []SweepCell         `json:"cells"`
	Best    costmodel.Economics `json:"best"`
	Summary SweepSummary        `json:"summary"`
}

// SweepService evaluates a grid of cost assumptions so a decision maker can
// see how fragile an operating point is to the efficacy and outreach-cost
// estimates behind it.
type SweepService struct {
	eval   *EvaluationService
	logger *internal.Logger
}

// NewSweepService creates a sensitivity-sweep service.
func NewSweepService(eval *EvaluationService, logger *internal.Logger) *SweepService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if eval == nil {
		eval = NewEvaluationService(logger)
	}
	return &SweepService{eval: eval, logger: logger}
}

// Sweep retrains and evaluates once per grid cell. Reports are computed on
// the test partition.
func (s *SweepService) Sweep(ctx context.Context, split dataset.Split, trainer ports.Trainer, cfg SweepConfig) (*SweepResult, error) {
	if len(cfg.InterventionCosts) == 0 || len(cfg.EfficacyRates) == 0 {
		return nil, core.NewInvalidParameterError("grid", "at least one intervention cost and efficacy rate are required")
	}
	if split.Train == nil || split.Test == nil {
		return nil, core.NewInvalidParameterError("split", "train and test partitions are required")
	}

	result := &SweepResult{}
	var totals, netValues []float64
	bestNet := 0.0
	haveBest := false

	for _, ic := range cfg.InterventionCosts {
		for _, eff := range cfg.EfficacyRates {
			econ := costmodel.Economics{
				InterventionCost: ic,
				OutcomeCost:      cfg.OutcomeCost,
				EfficacyRate:     eff,
			}

			m, err := econ.Build()
			if err != nil {
				if core.IsInvalidParameterError(err) {
					result.Cells = append(result.Cells, SweepCell{Economics: econ, Skipped: true, Reason: err.Error()})
					continue
				}
				return nil, err
			}

			clf, err := trainer.Train(ctx, split.Train.Examples, m, cfg.Complexity)
			if err != nil {
				return nil, err
			}
			cm, err := s.eval.Evaluate(ctx, clf, split.Test.Examples)
			if err != nil {
				return nil, err
			}

			report := decision.NewReport(cm, econ)
			result.Cells = append(result.Cells, SweepCell{Economics: econ, Report: report})
			totals = append(totals, report.TotalCost)
			netValues = append(netValues, report.NetValueVsBaseline)

			if !haveBest || report.NetValueVsBaseline > bestNet {
				bestNet = report.NetValueVsBaseline
				result.Best = econ
				haveBest = true
			}
		}
	}

	result.Summary = SweepSummary{
		Cells:   len(result.Cells),
		Skipped: len(result.Cells) - len(totals),
	}
	if len(totals) > 0 {
		result.Summary.MinTotalCost, _ = stats.Min(totals)
		result.Summary.MedianTotalCost, _ = stats.Median(totals)
		result.Summary.MaxTotalCost, _ = stats.Max(totals)
		result.Summary.BestNetValue, _ = stats.Max(netValues)
	}

	s.logger.Info("sweep finished: %d cells, %d skipped", result.Summary.Cells, result.Summary.Skipped)
	return result, nil
}
