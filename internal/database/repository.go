package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/backtest"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/scoring"
)

// Repository provides data access for analysis artifacts.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over an open connection pool.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// BacktestRun is one persisted simulation summary.
type BacktestRun struct {
	ID          uuid.UUID `json:"id"`
	Symbol      string    `json:"symbol"`
	Strategy    string    `json:"strategy"`
	WinRate     float64   `json:"winRate"`
	TotalReturn float64   `json:"totalReturn"`
	SharpeRatio float64   `json:"sharpeRatio"`
	IsViable    bool      `json:"isViable"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ScreenSnapshot is one persisted composite-score observation.
type ScreenSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Symbol     string    `json:"symbol"`
	TotalScore float64   `json:"totalScore"`
	Verdict    string    `json:"verdict"`
	Confidence string    `json:"confidence"`
	ScreenedAt time.Time `json:"screenedAt"`
}

// SaveBacktest stores a run summary and its full trade ledger in one
// transaction. Infinite profit factors are stored as NULL-safe sentinels via
// the largest representable float, since PostgreSQL doubles accept Inf but
// drivers differ; the summary API reconstructs Inf from wins>0, losses=0.
func (r *Repository) SaveBacktest(ctx context.Context, result *backtest.Result) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	profitFactor := float64(result.ProfitFactor)
	if math.IsInf(profitFactor, 1) {
		profitFactor = math.MaxFloat64
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO backtest_runs (
			id, symbol, strategy, initial_capital, final_capital,
			total_trades, wins, losses, win_rate, total_return,
			profit_factor, max_drawdown, sharpe_ratio, buy_hold_return, is_viable
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		id, result.Symbol, result.Strategy, result.InitialCapital, result.FinalCapital,
		result.TotalTrades, result.Wins, result.Losses, result.WinRate, result.TotalReturn,
		profitFactor, result.MaxDrawdown, result.SharpeRatio, result.BuyHoldReturn, result.IsViable,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert backtest run: %w", err)
	}

	for i, t := range result.Trades {
		_, err = tx.Exec(ctx, `
			INSERT INTO backtest_trades (
				run_id, seq, trade_type, trade_date, price,
				shares, value, fees, profit, profit_percent, reason
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			id, i, t.Type, t.Date, t.Price,
			t.Shares, t.Value, t.Fees, t.Profit, t.ProfitPercent, t.Reason,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListBacktests returns the most recent run summaries for a symbol, newest
// first. Empty symbol lists across all symbols.
func (r *Repository) ListBacktests(ctx context.Context, symbol string, limit int) ([]BacktestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, symbol, strategy, win_rate, total_return, sharpe_ratio, is_viable, created_at
		FROM backtest_runs
		WHERE ($1 = '' OR symbol = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []BacktestRun
	for rows.Next() {
		var run BacktestRun
		if err := rows.Scan(&run.ID, &run.Symbol, &run.Strategy, &run.WinRate,
			&run.TotalReturn, &run.SharpeRatio, &run.IsViable, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backtest run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveScreenSnapshot records one composite score observation.
func (r *Repository) SaveScreenSnapshot(ctx context.Context, score *scoring.CompositeScore) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO screen_snapshots (id, symbol, total_score, verdict, confidence)
		VALUES ($1, $2, $3, $4, $5)`,
		id, score.Symbol, score.Normalized, score.Verdict, score.Confidence,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert screen snapshot: %w", err)
	}
	return id, nil
}

// SnapshotHistory returns a symbol's score history, newest first.
func (r *Repository) SnapshotHistory(ctx context.Context, symbol string, limit int) ([]ScreenSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, symbol, total_score, verdict, confidence, screened_at
		FROM screen_snapshots
		WHERE symbol = $1
		ORDER BY screened_at DESC
		LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []ScreenSnapshot
	for rows.Next() {
		var s ScreenSnapshot
		if err := rows.Scan(&s.ID, &s.Symbol, &s.TotalScore, &s.Verdict, &s.Confidence, &s.ScreenedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
