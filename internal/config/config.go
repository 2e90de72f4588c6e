package config

import (
	"os"
	"strconv"

	"costwise/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Search   SearchConfig
}

// DatabaseConfig holds run-ledger storage settings. Driver selects between
// the embedded sqlite store and postgres.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// SearchConfig holds threshold-search defaults, overridable per request.
type SearchConfig struct {
	TrainFraction float64
	Seed          int64
	MaxIterations int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver: envOr("COSTWISE_DB_DRIVER", "sqlite"),
			DSN:    envOr("COSTWISE_DB_DSN", "costwise.db"),
		},
		Server: ServerConfig{
			Port: envOr("COSTWISE_PORT", "8080"),
		},
		Search: SearchConfig{
			TrainFraction: 0.7,
			Seed:          1,
			MaxIterations: 25,
		},
	}

	if v := os.Getenv("COSTWISE_TRAIN_FRACTION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f >= 1 {
			return nil, errors.ConfigInvalid("COSTWISE_TRAIN_FRACTION must be a fraction strictly between 0 and 1")
		}
		cfg.Search.TrainFraction = f
	}
	if v := os.Getenv("COSTWISE_SEED"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("COSTWISE_SEED must be an integer")
		}
		cfg.Search.Seed = s
	}
	if v := os.Getenv("COSTWISE_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.ConfigInvalid("COSTWISE_MAX_ITERATIONS must be a positive integer")
		}
		cfg.Search.MaxIterations = n
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, errors.ConfigInvalid("COSTWISE_DB_DRIVER must be sqlite or postgres")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
