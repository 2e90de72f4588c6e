package tree

import (
	"context"
	"fmt"
	"math/rand"

	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/ports"

	"golang.org/x/sync/errgroup"
)

const defaultRounds = 25

// BaggingTrainer fits an ensemble of cost-sensitive trees on bootstrap
// resamples and classifies by majority vote. Round seeds come from a named
// RNG stream so a fixed base seed reproduces the whole ensemble.
type BaggingTrainer struct {
	base *Trainer
	rng  ports.RNG
	seed int64
}

// NewBaggingTrainer creates a bagged ensemble trainer.
func NewBaggingTrainer(rng ports.RNG, seed int64) *BaggingTrainer {
	return &BaggingTrainer{base: NewTrainer(), rng: rng, seed: seed}
}

// Ensemble is a fitted bag of trees voting by simple majority. Ties go to
// the positive class: with an asymmetric loss matrix in play, an undecided
// case is the one worth intervening on.
type Ensemble struct {
	trees []ports.Classifier
}

// PredictLabel returns the majority vote across the ensemble.
func (e *Ensemble) PredictLabel(features []float64) (int, error) {
	if e == nil || len(e.trees) == 0 {
		return 0, core.ErrUntrainedModel
	}

	votes := 0
	for _, t := range e.trees {
		label, err := t.PredictLabel(features)
		if err != nil {
			return 0, err
		}
		votes += label
	}
	if 2*votes >= len(e.trees) {
		return 1, nil
	}
	return 0, nil
}

// Size returns the number of trees in the ensemble.
func (e *Ensemble) Size() int {
	return len(e.trees)
}

// Train fits the ensemble. Rounds are trained in parallel; bootstrap
// resampling for each round is driven by its own deterministic seed.
func (t *BaggingTrainer) Train(ctx context.Context, examples []dataset.Example, costs costmodel.CostModel, params ports.Complexity) (ports.Classifier, error) {
	if len(examples) == 0 {
		return nil, core.ErrInsufficientData
	}

	rounds := params.Rounds
	if rounds <= 0 {
		rounds = defaultRounds
	}

	seeds := make([]int64, rounds)
	for i := range seeds {
		stream, err := t.rng.SeededStream(ctx, fmt.Sprintf("bootstrap/%d", i), t.seed)
		if err != nil {
			return nil, err
		}
		seeds[i] = stream.Int63()
	}

	trees := make([]ports.Classifier, rounds)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < rounds; i++ {
		g.Go(func() error {
			sample := resample(examples, rand.New(rand.NewSource(seeds[i])))
			clf, err := t.base.Train(gctx, sample, costs, params)
			if err != nil {
				return fmt.Errorf("bootstrap round %d: %w", i, err)
			}
			trees[i] = clf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Ensemble{trees: trees}, nil
}

// resample draws len(examples) examples with replacement.
func resample(examples []dataset.Example, rng *rand.Rand) []dataset.Example {
	out := make([]dataset.Example, len(examples))
	for i := range out {
		out[i] = examples[rng.Intn(len(examples))]
	}
	return out
}

var _ ports.Trainer = (*BaggingTrainer)(nil)
var _ ports.Classifier = (*Ensemble)(nil)
