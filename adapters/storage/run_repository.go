package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"costwise/domain/core"
	"costwise/domain/run"
	"costwise/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements ports.RunRepository over sqlx
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Create inserts a completed search run
func (r *runRepository) Create(ctx context.Context, rec *run.Run) error {
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO runs (
		id, dataset, target_rate, tolerance,
		intervention_cost, outcome_cost, efficacy_rate,
		cost_fp, cost_fn, iterations,
		tn, fp, fn, tp, report, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Dataset, rec.TargetRate, rec.Tolerance,
		rec.Economics.InterventionCost, rec.Economics.OutcomeCost, rec.Economics.EfficacyRate,
		rec.CostModel.FalsePositive, rec.CostModel.FalseNegative, rec.Iterations,
		rec.Confusion.TrueNegative, rec.Confusion.FalsePositive,
		rec.Confusion.FalseNegative, rec.Confusion.TruePositive,
		// RFC3339 keeps lexicographic and chronological order aligned across
		// both drivers.
		string(reportJSON), rec.CreatedAt.Time().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*run.Run, error) {
	query := r.db.Rebind(`SELECT
		id, dataset, target_rate, tolerance,
		intervention_cost, outcome_cost, efficacy_rate,
		cost_fp, cost_fn, iterations,
		tn, fp, fn, tp, report, created_at
	FROM runs WHERE id = ?`)

	rec, err := r.scanRun(r.db.QueryRowxContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("run", id.String())
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return rec, nil
}

// ListRecent retrieves the most recent runs, newest first
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]*run.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(`SELECT
		id, dataset, target_rate, tolerance,
		intervention_cost, outcome_cost, efficacy_rate,
		cost_fp, cost_fn, iterations,
		tn, fp, fn, tp, report, created_at
	FROM runs ORDER BY created_at DESC LIMIT ?`)

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*run.Run
	for rows.Next() {
		rec, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *runRepository) scanRun(row rowScanner) (*run.Run, error) {
	var (
		rec        run.Run
		id         string
		reportJSON string
		createdAt  string
	)

	err := row.Scan(
		&id, &rec.Dataset, &rec.TargetRate, &rec.Tolerance,
		&rec.Economics.InterventionCost, &rec.Economics.OutcomeCost, &rec.Economics.EfficacyRate,
		&rec.CostModel.FalsePositive, &rec.CostModel.FalseNegative, &rec.Iterations,
		&rec.Confusion.TrueNegative, &rec.Confusion.FalsePositive,
		&rec.Confusion.FalseNegative, &rec.Confusion.TruePositive,
		&reportJSON, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ID = core.RunID(id)
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	rec.CreatedAt = core.NewTimestamp(ts)
	if err := json.Unmarshal([]byte(reportJSON), &rec.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rec, nil
}
