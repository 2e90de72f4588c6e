package ports

import (
	"context"

	"costwise/domain/costmodel"
	"costwise/domain/dataset"
)

// Complexity bundles the regularization knobs a trainer accepts. Zero values
// mean "use the trainer's default".
type Complexity struct {
	// MaxDepth bounds the depth of a fitted tree.
	MaxDepth int `json:"max_depth"`
	// MinLeafSize is the minimum number of training examples per leaf.
	MinLeafSize int `json:"min_leaf_size"`
	// MinCostReduction prunes splits whose expected-cost improvement falls
	// below this threshold, analogous to a complexity parameter.
	MinCostReduction float64 `json:"min_cost_reduction"`
	// Rounds is the ensemble size for bagged trainers; ignored by single-tree
	// trainers.
	Rounds int `json:"rounds"`
}

// Trainer fits a classifier to a training subset, biased by the supplied
// loss matrix so split and leaf decisions minimize expected cost rather than
// raw misclassification count.
type Trainer interface {
	Train(ctx context.Context, examples []dataset.Example, costs costmodel.CostModel, params Complexity) (Classifier, error)
}
