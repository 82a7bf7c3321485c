// Package database persists backtest runs and screener snapshots to
// PostgreSQL. Persistence is optional: the analysis engine itself never
// touches the database.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New connects using a pgx connection URL and verifies connectivity.
func New(ctx context.Context, url string, logger zerolog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{
		Pool:   pool,
		logger: logger.With().Str("component", "database").Logger(),
	}
	db.logger.Info().Msg("connected to PostgreSQL")
	return db, nil
}

// Close releases the pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info().Msg("database connection closed")
	}
}

// Migrate creates the schema. Every statement is idempotent so the server
// can run it unconditionally on startup.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			strategy TEXT NOT NULL,
			initial_capital DOUBLE PRECISION NOT NULL,
			final_capital DOUBLE PRECISION NOT NULL,
			total_trades INTEGER NOT NULL,
			wins INTEGER NOT NULL,
			losses INTEGER NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			total_return DOUBLE PRECISION NOT NULL,
			profit_factor DOUBLE PRECISION NOT NULL,
			max_drawdown DOUBLE PRECISION NOT NULL,
			sharpe_ratio DOUBLE PRECISION NOT NULL,
			buy_hold_return DOUBLE PRECISION NOT NULL,
			is_viable BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_runs_symbol
			ON backtest_runs (symbol, strategy, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			trade_type TEXT NOT NULL,
			trade_date BIGINT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			shares BIGINT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			fees DOUBLE PRECISION NOT NULL,
			profit DOUBLE PRECISION NOT NULL,
			profit_percent DOUBLE PRECISION NOT NULL,
			reason TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_trades_run
			ON backtest_trades (run_id, seq)`,
		`CREATE TABLE IF NOT EXISTS screen_snapshots (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			total_score DOUBLE PRECISION NOT NULL,
			verdict TEXT NOT NULL,
			confidence TEXT NOT NULL,
			screened_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_snapshots_symbol
			ON screen_snapshots (symbol, screened_at DESC)`,
	}

	for i, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	db.logger.Info().Int("statements", len(migrations)).Msg("migrations applied")
	return nil
}
