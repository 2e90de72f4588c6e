package ports

import (
	"context"

	"costwise/domain/core"
	"costwise/domain/run"
)

// RunRepository persists completed threshold-search runs.
type RunRepository interface {
	Create(ctx context.Context, r *run.Run) error
	GetByID(ctx context.Context, id core.RunID) (*run.Run, error)
	ListRecent(ctx context.Context, limit int) ([]*run.Run, error)
}
