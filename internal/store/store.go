// Package store defines storage interfaces and implementations for
// persisting daily bars and backtest run history.
package store

import (
	"context"
	"time"

	"gaptrader/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end].
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Run summarizes one persisted backtest run.
type Run struct {
	ID                 int64
	StartedAt          time.Time
	StartDate          string
	EndDate            string
	InitialCash        float64
	DeploymentFraction float64
	PositionCount      int
	FinalCash          float64
	TotalPnL           float64
	SharpeRatio        float64 // 0 when the ratio was undefined for the run
	Days               int
	Trades             int
}

// RunStore persists backtest runs together with their trade logs.
type RunStore interface {
	// SaveRun inserts a run and its trade log, returning the run ID.
	SaveRun(ctx context.Context, run *Run, trades []domain.TradeRecord) (int64, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// RunTrades returns the trade log of a run in its original order.
	RunTrades(ctx context.Context, runID int64) ([]domain.TradeRecord, error)
}
