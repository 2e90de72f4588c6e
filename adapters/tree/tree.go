package tree

import (
	"costwise/domain/core"
)

// node is one decision point in a fitted tree. Internal nodes route on
// feature < threshold; leaves carry the cost-minimizing label.
type node struct {
	leaf      bool
	label     int
	feature   int
	threshold float64
	left      *node
	right     *node
}

// Classifier is a fitted cost-sensitive decision tree.
type Classifier struct {
	root     *node
	features int
}

// PredictLabel routes a feature vector to a leaf and returns its label.
func (c *Classifier) PredictLabel(features []float64) (int, error) {
	if c == nil || c.root == nil {
		return 0, core.ErrUntrainedModel
	}
	if len(features) < c.features {
		return 0, core.NewInvalidParameterError("features",
			"vector shorter than the training feature space")
	}

	n := c.root
	for !n.leaf {
		if features[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.label, nil
}

// Depth returns the depth of the fitted tree. A single leaf has depth zero.
func (c *Classifier) Depth() int {
	return depth(c.root)
}

// Leaves returns the number of leaves in the fitted tree.
func (c *Classifier) Leaves() int {
	return leaves(c.root)
}

func depth(n *node) int {
	if n == nil || n.leaf {
		return 0
	}
	l, r := depth(n.left), depth(n.right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func leaves(n *node) int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	return leaves(n.left) + leaves(n.right)
}
