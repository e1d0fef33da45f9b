package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"gaptrader/internal/domain"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at          TEXT NOT NULL,
	start_date          TEXT NOT NULL,
	end_date            TEXT NOT NULL,
	initial_cash        REAL NOT NULL,
	deployment_fraction REAL NOT NULL,
	position_count      INTEGER NOT NULL,
	final_cash          REAL NOT NULL,
	total_pnl           REAL NOT NULL,
	sharpe_ratio        REAL NOT NULL,
	days                INTEGER NOT NULL,
	trades              INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	seq        INTEGER NOT NULL,
	date       TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	quantity   INTEGER NOT NULL,
	price      REAL NOT NULL,
	trade_type TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its trade log in one transaction and
// returns the new run's ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, trades []domain.TradeRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, start_date, end_date, initial_cash,
			deployment_fraction, position_count, final_cash, total_pnl,
			sharpe_ratio, days, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.StartDate, run.EndDate,
		run.InitialCash, run.DeploymentFraction, run.PositionCount,
		run.FinalCash, run.TotalPnL, run.SharpeRatio,
		run.Days, len(trades),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_trades (run_id, seq, date, symbol, quantity, price, trade_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, tr := range trades {
		if _, err := stmt.ExecContext(ctx, runID, i,
			tr.Date.UTC().Format("2006-01-02"), tr.Symbol,
			tr.Quantity, tr.Price, string(tr.Type)); err != nil {
			return 0, fmt.Errorf("inserting trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, start_date, end_date, initial_cash,
			deployment_fraction, position_count, final_cash, total_pnl,
			sharpe_ratio, days, trades
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &startedAt, &r.StartDate, &r.EndDate,
			&r.InitialCash, &r.DeploymentFraction, &r.PositionCount,
			&r.FinalCash, &r.TotalPnL, &r.SharpeRatio, &r.Days, &r.Trades); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunTrades returns the trade log of a run in insertion order.
func (s *SQLiteStore) RunTrades(ctx context.Context, runID int64) ([]domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, symbol, quantity, price, trade_type
		FROM run_trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var tr domain.TradeRecord
		var date, tradeType string
		if err := rows.Scan(&date, &tr.Symbol, &tr.Quantity, &tr.Price, &tradeType); err != nil {
			return nil, err
		}
		if t, err := time.Parse("2006-01-02", date); err == nil {
			tr.Date = t
		}
		tr.Type = domain.TradeType(tradeType)
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}
