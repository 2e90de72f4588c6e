package ports

import (
	"context"

	"costwise/domain/dataset"
)

// DatasetLoader reads a tabular file into a dataset. The outcome column is
// binarized against the loader's configured positive values; remaining
// columns become features.
type DatasetLoader interface {
	Load(ctx context.Context, path string, outcome string) (*dataset.Dataset, error)
}
