package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	// Registered drivers: postgres for shared ledgers, embedded sqlite for
	// single-analyst use.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the run ledger. driver is "postgres" or "sqlite"; dsn is
// a connection string or a sqlite file path.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	dataset           TEXT NOT NULL,
	target_rate       REAL NOT NULL,
	tolerance         REAL NOT NULL,
	intervention_cost REAL NOT NULL,
	outcome_cost      REAL NOT NULL,
	efficacy_rate     REAL NOT NULL,
	cost_fp           REAL NOT NULL,
	cost_fn           REAL NOT NULL,
	iterations        INTEGER NOT NULL,
	tn                INTEGER NOT NULL,
	fp                INTEGER NOT NULL,
	fn                INTEGER NOT NULL,
	tp                INTEGER NOT NULL,
	report            TEXT NOT NULL,
	created_at        TEXT NOT NULL
)`

// Migrate creates the ledger schema if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate runs table: %w", err)
	}
	return nil
}
