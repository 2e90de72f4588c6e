package testkit

import (
	"math"
	"math/rand"

	"costwise/domain/core"
	"costwise/domain/dataset"
)

// CohortConfig configures the synthetic outreach-cohort generator.
type CohortConfig struct {
	Size int
	// BaseRate shifts the logistic intercept; higher values produce more
	// positive outcomes.
	BaseRate float64
	Seed     int64
}

// DefaultCohortConfig returns a cohort similar in shape to the targeting
// reports: mostly negatives, with outcome risk driven by a few features.
func DefaultCohortConfig() CohortConfig {
	return CohortConfig{Size: 2000, BaseRate: -2.0, Seed: 1}
}

// GenerateCohort produces a seeded synthetic dataset. The first feature is a
// composite risk score correlated with the outcome, the remaining features
// are weaker drivers plus noise, so both the fakes (which threshold on
// feature 0) and real tree trainers have signal to find.
func GenerateCohort(cfg CohortConfig) *dataset.Dataset {
	rng := rand.New(rand.NewSource(cfg.Seed))

	d := &dataset.Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    "synthetic-cohort",
		Outcome: "outcome",
		Columns: []dataset.ColumnMeta{
			{Name: "risk_score", Kind: dataset.KindNumeric},
			{Name: "prior_visits", Kind: dataset.KindNumeric},
			{Name: "age", Kind: dataset.KindNumeric},
			{Name: "region", Kind: dataset.KindCategorical, Levels: []string{"east", "north", "south", "west"}},
		},
	}

	for i := 0; i < cfg.Size; i++ {
		risk := rng.NormFloat64()
		visits := float64(rng.Intn(12))
		age := 40 + rng.NormFloat64()*15
		region := float64(rng.Intn(4))

		logit := cfg.BaseRate + 1.8*risk + 0.15*visits + 0.01*(age-40)
		label := 0
		if rng.Float64() < 1/(1+math.Exp(-logit)) {
			label = 1
		}

		d.Examples = append(d.Examples, dataset.Example{
			Features: []float64{risk, visits, age, region},
			Label:    label,
		})
	}

	return d
}
