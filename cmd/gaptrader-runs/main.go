package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gaptrader/internal/config"
	"gaptrader/internal/store"
	"gaptrader/internal/util"
)

// gaptrader-runs inspects the backtest run history persisted in SQLite.
func main() {
	limitFlag := flag.Int("limit", 20, "max runs to list")
	tradesFlag := flag.Int64("trades", 0, "print the trade log of the given run ID instead of listing runs")
	flag.Parse()

	cfgPath := "config/gaptrader.yaml"
	if p := os.Getenv("GAPTRADER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetupDefault(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Storage.SQLitePath == "" {
		log.Fatalf("no sqlite_path configured")
	}

	runStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run store: %v", err)
	}
	defer runStore.Close()

	ctx := context.Background()

	if *tradesFlag > 0 {
		printTrades(ctx, runStore, *tradesFlag)
		return
	}

	runs, err := runStore.ListRuns(ctx, *limitFlag)
	if err != nil {
		log.Fatalf("listing runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}

	fmt.Printf("%4s  %-19s  %-10s  %-10s  %12s  %12s  %8s  %5s  %6s\n",
		"ID", "Started", "Start", "End", "Final", "PnL", "Sharpe", "Days", "Trades")
	for _, r := range runs {
		fmt.Printf("%4d  %-19s  %-10s  %-10s  %12.2f  %12.2f  %8.4f  %5d  %6d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.StartDate, r.EndDate, r.FinalCash, r.TotalPnL, r.SharpeRatio, r.Days, r.Trades)
	}
}

func printTrades(ctx context.Context, runStore *store.SQLiteStore, runID int64) {
	trades, err := runStore.RunTrades(ctx, runID)
	if err != nil {
		log.Fatalf("loading trades for run %d: %v", runID, err)
	}
	if len(trades) == 0 {
		fmt.Printf("no trades recorded for run %d\n", runID)
		return
	}

	fmt.Printf("%-10s  %-8s  %10s  %12s  %-6s\n", "Date", "Symbol", "Quantity", "Price", "Type")
	for _, t := range trades {
		fmt.Printf("%-10s  %-8s  %10d  %12.2f  %-6s\n",
			t.Date.Format("2006-01-02"), t.Symbol, t.Quantity, t.Price, t.Type)
	}
}
