package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaptrader/internal/backtest"
	"gaptrader/internal/config"
	"gaptrader/internal/fetch"
	"gaptrader/internal/series"
	"gaptrader/internal/store"
	"gaptrader/internal/tradelog"
	"gaptrader/internal/util"
)

func main() {
	startFlag := flag.String("start", "", "backtest start date (YYYY-MM-DD, overrides config)")
	endFlag := flag.String("end", "", "backtest end date (YYYY-MM-DD, overrides config)")
	fetchFlag := flag.Bool("fetch", false, "fetch bars from the Alpaca API instead of the local cache")
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

	start, end, err := resolveWindow(cfg, *startFlag, *endFlag)
	if err != nil {
		log.Fatalf("resolving backtest window: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	prices, err := loadSeries(ctx, cfg, *fetchFlag, start, end)
	if err != nil {
		log.Fatalf("loading price series: %v", err)
	}
	if prices.Len() == 0 {
		log.Fatalf("no price data for universe %v in %s..%s", cfg.Backtest.Universe,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	engine, err := backtest.New(prices, backtest.Config{
		InitialCash:        cfg.Backtest.InitialCash,
		DeploymentFraction: cfg.Backtest.DeploymentFraction,
		PositionCount:      cfg.Backtest.PositionCount,
		MoverCount:         cfg.Backtest.MoverCount,
		Dedupe:             cfg.Backtest.Dedupe,
	}, slog.Default())
	if err != nil {
		log.Fatalf("invalid backtest config: %v", err)
	}

	state, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("backtest aborted: %v", err)
	}

	// Each run starts the trade log fresh.
	logWriter := tradelog.NewWriter(cfg.Backtest.TradeLogPath)
	if err := logWriter.Remove(); err != nil {
		log.Fatalf("clearing trade log: %v", err)
	}
	if err := logWriter.Append(state.TradeLog); err != nil {
		log.Fatalf("writing trade log: %v", err)
	}

	summary, sumErr := backtest.Summarize(state.PnLHistory, cfg.Backtest.InitialCash, backtest.DefaultRiskFreeRate)
	if sumErr != nil && !errors.Is(sumErr, backtest.ErrUndefinedStatistic) {
		log.Fatalf("summarizing run: %v", sumErr)
	}

	if cfg.Storage.SQLitePath != "" {
		if err := persistRun(ctx, cfg, start, end, state, summary); err != nil {
			slog.Warn("failed to persist run", "err", err)
		}
	}

	fmt.Printf("Backtest %s .. %s (%d trading days, %d trades)\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		len(state.PnLHistory), len(state.TradeLog))
	fmt.Printf("  Initial cash:    %.2f\n", cfg.Backtest.InitialCash)
	fmt.Printf("  Final value:     %.2f\n", summary.FinalValue)
	fmt.Printf("  Total PnL:       %.2f\n", summary.TotalPnL)
	if errors.Is(sumErr, backtest.ErrUndefinedStatistic) {
		fmt.Printf("  Sharpe ratio:    n/a\n")
	} else {
		fmt.Printf("  Sharpe ratio:    %.4f\n", summary.SharpeRatio)
	}
	fmt.Printf("  Trade log:       %s\n", logWriter.Path())
}

// resolveWindow determines the backtest date range from flags and
// config. An unset end date defaults to the latest finished trading
// day per the Alpaca calendar.
func resolveWindow(cfg *config.Config, startFlag, endFlag string) (time.Time, time.Time, error) {
	startStr := cfg.Backtest.StartDate
	if startFlag != "" {
		startStr = startFlag
	}
	if startStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("no start date configured")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q: %w", startStr, err)
	}

	endStr := cfg.Backtest.EndDate
	if endFlag != "" {
		endStr = endFlag
	}
	var end time.Time
	if endStr == "" {
		end, err = fetch.LatestFinishedTradingDay(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("determining end date: %w", err)
		}
	} else {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q: %w", endStr, err)
		}
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}

func loadSeries(ctx context.Context, cfg *config.Config, fetchLive bool, start, end time.Time) (*series.Store, error) {
	if fetchLive {
		fetcher := fetch.NewFetcher(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Fetch.BatchSize, cfg.Fetch.MaxWorkers, cfg.Fetch.RateLimitPerMin, cfg.Fetch.Feed,
		)
		return fetcher.FetchSeries(ctx, cfg.Backtest.Universe, start, end)
	}
	return fetch.LoadSeries(ctx, store.NewParquetStore(cfg.Storage.DataDir), cfg.Backtest.Universe, start, end)
}

func persistRun(ctx context.Context, cfg *config.Config, start, end time.Time, state *backtest.State, summary backtest.Summary) error {
	runStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer runStore.Close()

	id, err := runStore.SaveRun(ctx, &store.Run{
		StartedAt:          time.Now(),
		StartDate:          start.Format("2006-01-02"),
		EndDate:            end.Format("2006-01-02"),
		InitialCash:        cfg.Backtest.InitialCash,
		DeploymentFraction: cfg.Backtest.DeploymentFraction,
		PositionCount:      cfg.Backtest.PositionCount,
		FinalCash:          state.CashBalance,
		TotalPnL:           summary.TotalPnL,
		SharpeRatio:        summary.SharpeRatio,
		Days:               len(state.PnLHistory),
		Trades:             len(state.TradeLog),
	}, state.TradeLog)
	if err != nil {
		return err
	}
	slog.Info("run persisted", "id", id, "db", cfg.Storage.SQLitePath)
	return nil
}
