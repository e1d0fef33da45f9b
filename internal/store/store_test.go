package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gaptrader/internal/domain"
)

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")
	got := ps.barPath("AAPL", 2024)
	want := filepath.Join("/data", "daily", "AAPL", "2024.parquet")
	if got != want {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := []domain.Bar{
		{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Open:      185.0, High: 186.5, Low: 184.0, Close: 185.5,
			Volume: 50000000, TradeCount: 500000, VWAP: 185.25,
		},
		{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Open:      185.5, High: 187.0, Low: 185.0, Close: 186.0,
			Volume: 45000000, TradeCount: 450000, VWAP: 185.75,
		},
	}

	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars, want 2", len(got))
	}
	if got[0].Close != 185.5 || got[1].Close != 186.0 {
		t.Errorf("closes = %v/%v, want 185.5/186.0", got[0].Close, got[1].Close)
	}
}

func TestParquetStoreMergeBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	first := []domain.Bar{{
		Symbol:    "MSFT",
		Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Open:      400, High: 405, Low: 399, Close: 403,
	}}
	if err := ps.WriteBars(ctx, first); err != nil {
		t.Fatalf("WriteBars (first): %v", err)
	}

	// Second write for the same symbol+year must merge, not overwrite.
	second := []domain.Bar{{
		Symbol:    "MSFT",
		Timestamp: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Open:      403, High: 410, Low: 402, Close: 408,
	}}
	if err := ps.WriteBars(ctx, second); err != nil {
		t.Fatalf("WriteBars (second): %v", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := ps.ReadBars(ctx, "MSFT", start, end)
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars after merge, want 2", len(got))
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := []domain.Bar{
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 185, Close: 185.5},
		{Symbol: "GOOGL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 140, Close: 140.5},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "GOOGL" {
		t.Errorf("ListSymbols = %v, want [AAPL GOOGL]", symbols)
	}
}

func TestSQLiteStoreSaveAndListRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	trades := []domain.TradeRecord{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "AAPL", Quantity: 10, Price: 170, Type: domain.TradeBuy},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "MSFT", Quantity: -5, Price: 400, Type: domain.TradeSell},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "AAPL", Quantity: -10, Price: 171, Type: domain.TradeClose},
	}
	run := &Run{
		StartedAt:          time.Now(),
		StartDate:          "2024-03-01",
		EndDate:            "2024-03-31",
		InitialCash:        100000,
		DeploymentFraction: 1.0,
		PositionCount:      20,
		FinalCash:          100010,
		TotalPnL:           10,
		SharpeRatio:        1.2,
		Days:               21,
	}

	id, err := s.SaveRun(ctx, run, trades)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id <= 0 {
		t.Fatalf("SaveRun returned id %d, want positive", id)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns returned %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.TotalPnL != 10 || got.Trades != 3 {
		t.Errorf("run = %+v, want id %d, pnl 10, 3 trades", got, id)
	}
	if got.StartDate != "2024-03-01" || got.EndDate != "2024-03-31" {
		t.Errorf("run dates = %s..%s, want 2024-03-01..2024-03-31", got.StartDate, got.EndDate)
	}
}

func TestSQLiteStoreRunTradesOrder(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	trades := []domain.TradeRecord{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "UP", Quantity: 100, Price: 10, Type: domain.TradeBuy},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "DOWN", Quantity: -50, Price: 20, Type: domain.TradeSell},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "UP", Quantity: -100, Price: 11, Type: domain.TradeClose},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "DOWN", Quantity: 50, Price: 19, Type: domain.TradeClose},
	}
	id, err := s.SaveRun(ctx, &Run{StartedAt: time.Now()}, trades)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.RunTrades(ctx, id)
	if err != nil {
		t.Fatalf("RunTrades: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("RunTrades returned %d trades, want 4", len(got))
	}
	for i := range trades {
		if got[i].Symbol != trades[i].Symbol || got[i].Quantity != trades[i].Quantity || got[i].Type != trades[i].Type {
			t.Errorf("trade %d = %+v, want %+v (order must be preserved)", i, got[i], trades[i])
		}
	}
}
