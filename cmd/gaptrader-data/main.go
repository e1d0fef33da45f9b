package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaptrader/internal/config"
	"gaptrader/internal/fetch"
	"gaptrader/internal/store"
	"gaptrader/internal/util"
)

// gaptrader-data fills the local Parquet bar cache for the configured
// symbol universe so backtests can run offline.
func main() {
	startFlag := flag.String("start", "", "fetch start date (YYYY-MM-DD, overrides config)")
	endFlag := flag.String("end", "", "fetch end date (YYYY-MM-DD, default: latest finished trading day)")
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

	if len(cfg.Backtest.Universe) == 0 {
		log.Fatalf("no symbol universe configured")
	}

	startStr := cfg.Backtest.StartDate
	if *startFlag != "" {
		startStr = *startFlag
	}
	if startStr == "" {
		log.Fatalf("no start date configured")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		log.Fatalf("bad start date %q: %v", startStr, err)
	}

	var end time.Time
	if *endFlag != "" {
		end, err = time.Parse("2006-01-02", *endFlag)
		if err != nil {
			log.Fatalf("bad end date %q: %v", *endFlag, err)
		}
	} else {
		end, err = fetch.LatestFinishedTradingDay(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
		if err != nil {
			log.Fatalf("determining end date: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := fetch.NewFetcher(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		cfg.Fetch.BatchSize, cfg.Fetch.MaxWorkers, cfg.Fetch.RateLimitPerMin, cfg.Fetch.Feed,
	)

	slog.Info("fetching daily bars",
		"symbols", len(cfg.Backtest.Universe),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))

	bars, err := fetcher.FetchBars(ctx, cfg.Backtest.Universe, start, end)
	if err != nil {
		log.Fatalf("fetching bars: %v", err)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	if err := pstore.WriteBars(ctx, bars); err != nil {
		log.Fatalf("writing bars: %v", err)
	}

	slog.Info("bar cache updated", "bars", len(bars), "dataDir", cfg.Storage.DataDir)
}
