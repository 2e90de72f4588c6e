package tree

import (
	"context"
	"sort"

	"costwise/domain/core"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/ports"

	"gonum.org/v1/gonum/stat"
)

const (
	defaultMaxDepth    = 6
	defaultMinLeafSize = 20

	// maxCandidates caps the number of thresholds scanned per feature; above
	// it, candidates are taken at evenly spaced quantiles.
	maxCandidates = 64
)

// Trainer fits a single recursive-partitioning tree. Splits are chosen by
// expected-cost reduction under the supplied loss matrix and leaves take the
// cost-minimizing label, so an asymmetric matrix shifts the operating point
// without touching the tree-growing mechanics.
type Trainer struct{}

// NewTrainer creates a single-tree trainer.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Train fits a tree to the examples under the given loss matrix.
func (t *Trainer) Train(ctx context.Context, examples []dataset.Example, costs costmodel.CostModel, params ports.Complexity) (ports.Classifier, error) {
	if len(examples) == 0 {
		return nil, core.ErrInsufficientData
	}
	if costs.FalsePositive < 0 || costs.FalseNegative < 0 || costs.TrueNegative < 0 || costs.TruePositive < 0 {
		return nil, core.NewInvalidParameterError("costs", "loss matrix entries must be non-negative")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if params.MaxDepth <= 0 {
		params.MaxDepth = defaultMaxDepth
	}
	if params.MinLeafSize <= 0 {
		params.MinLeafSize = defaultMinLeafSize
	}

	g := &grower{costs: costs, params: params}
	g.rootCost, _ = leafCost(countLabels(examples), costs)

	root := g.grow(examples, 0)
	return &Classifier{root: root, features: len(examples[0].Features)}, nil
}

type grower struct {
	costs    costmodel.CostModel
	params   ports.Complexity
	rootCost float64
}

type labelCounts struct {
	neg, pos int
}

func countLabels(examples []dataset.Example) labelCounts {
	var c labelCounts
	for _, ex := range examples {
		if ex.Label == 1 {
			c.pos++
		} else {
			c.neg++
		}
	}
	return c
}

// leafCost returns the expected cost of labeling a leaf with the cheaper of
// the two classes, plus that label. Ties go to the negative class so an
// unbiased matrix degenerates to majority vote with a no-intervention tilt.
func leafCost(c labelCounts, costs costmodel.CostModel) (float64, int) {
	costAsNeg := float64(c.pos)*costs.FalseNegative + float64(c.neg)*costs.TrueNegative
	costAsPos := float64(c.neg)*costs.FalsePositive + float64(c.pos)*costs.TruePositive
	if costAsPos < costAsNeg {
		return costAsPos, 1
	}
	return costAsNeg, 0
}

func (g *grower) grow(examples []dataset.Example, d int) *node {
	counts := countLabels(examples)
	cost, label := leafCost(counts, g.costs)

	if d >= g.params.MaxDepth ||
		len(examples) < 2*g.params.MinLeafSize ||
		counts.pos == 0 || counts.neg == 0 {
		return &node{leaf: true, label: label}
	}

	feature, threshold, splitCost, ok := g.bestSplit(examples)
	if !ok || cost-splitCost <= g.params.MinCostReduction*g.rootCost {
		return &node{leaf: true, label: label}
	}

	var left, right []dataset.Example
	for _, ex := range examples {
		if ex.Features[feature] < threshold {
			left = append(left, ex)
		} else {
			right = append(right, ex)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      g.grow(left, d+1),
		right:     g.grow(right, d+1),
	}
}

// bestSplit scans every feature for the threshold minimizing the summed
// expected cost of the two children.
func (g *grower) bestSplit(examples []dataset.Example) (feature int, threshold, cost float64, ok bool) {
	nFeatures := len(examples[0].Features)
	best := false

	for f := 0; f < nFeatures; f++ {
		thr, c, found := g.scanFeature(examples, f)
		if !found {
			continue
		}
		if !best || c < cost {
			feature, threshold, cost = f, thr, c
			best = true
		}
	}
	return feature, threshold, cost, best
}

func (g *grower) scanFeature(examples []dataset.Example, f int) (threshold, cost float64, ok bool) {
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return examples[order[a]].Features[f] < examples[order[b]].Features[f]
	})

	candidates := g.candidateThresholds(examples, order, f)
	if len(candidates) == 0 {
		return 0, 0, false
	}

	total := countLabels(examples)
	var left labelCounts
	ci := 0
	for _, idx := range order {
		v := examples[idx].Features[f]

		// Evaluate every candidate that falls before this value.
		for ci < len(candidates) && v >= candidates[ci] {
			right := labelCounts{neg: total.neg - left.neg, pos: total.pos - left.pos}
			leftN := left.neg + left.pos
			rightN := right.neg + right.pos
			if leftN >= g.params.MinLeafSize && rightN >= g.params.MinLeafSize {
				lc, _ := leafCost(left, g.costs)
				rc, _ := leafCost(right, g.costs)
				if !ok || lc+rc < cost {
					threshold, cost, ok = candidates[ci], lc+rc, true
				}
			}
			ci++
		}
		if ci == len(candidates) {
			break
		}

		if examples[idx].Label == 1 {
			left.pos++
		} else {
			left.neg++
		}
	}
	return threshold, cost, ok
}

// candidateThresholds returns sorted cut points for a feature: midpoints
// between distinct values, thinned to quantiles when there are too many.
func (g *grower) candidateThresholds(examples []dataset.Example, order []int, f int) []float64 {
	values := make([]float64, 0, len(order))
	for _, idx := range order {
		v := examples[idx].Features[f]
		if len(values) == 0 || v != values[len(values)-1] {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}

	if len(values) > maxCandidates {
		cuts := make([]float64, 0, maxCandidates)
		for i := 1; i <= maxCandidates; i++ {
			q := float64(i) / float64(maxCandidates+1)
			cuts = append(cuts, stat.Quantile(q, stat.Empirical, values, nil))
		}
		return dedupe(cuts)
	}

	cuts := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		cuts = append(cuts, (values[i-1]+values[i])/2)
	}
	return cuts
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

var _ ports.Trainer = (*Trainer)(nil)
