package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gaptrader/internal/backtest"
	"gaptrader/internal/config"
	"gaptrader/internal/domain"
	"gaptrader/internal/fetch"
	"gaptrader/internal/store"
	"gaptrader/internal/util"
)

// gaptrader-movers prints the ranked overnight movers for one trading
// date using the local bar cache.
func main() {
	dateFlag := flag.String("date", "", "trading date to rank (YYYY-MM-DD, required)")
	countFlag := flag.Int("count", 0, "movers per list (default: config mover_count)")
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

	if *dateFlag == "" {
		log.Fatalf("-date is required")
	}
	date, err := time.Parse("2006-01-02", *dateFlag)
	if err != nil {
		log.Fatalf("bad date %q: %v", *dateFlag, err)
	}

	count := cfg.Backtest.MoverCount
	if *countFlag > 0 {
		count = *countFlag
	}

	ctx := context.Background()
	// A week of lead-in covers the previous session across weekends
	// and holidays.
	prices, err := fetch.LoadSeries(ctx, store.NewParquetStore(cfg.Storage.DataDir),
		cfg.Backtest.Universe, date.AddDate(0, 0, -7), date)
	if err != nil {
		log.Fatalf("loading price series: %v", err)
	}
	if prices.Len() == 0 {
		log.Fatalf("no cached data covering %s; run gaptrader-data first", *dateFlag)
	}

	ranker := backtest.Ranker{Count: count, Dedupe: cfg.Backtest.Dedupe}
	top, bottom := ranker.Rank(prices, date)
	if len(top) == 0 && len(bottom) == 0 {
		log.Fatalf("no movers computable for %s (missing bars?)", *dateFlag)
	}

	fmt.Printf("Overnight movers for %s\n\n", date.Format("2006-01-02"))
	printMovers("Top gainers", top)
	fmt.Println()
	printMovers("Top losers", bottom)
}

func printMovers(title string, movers []domain.Mover) {
	fmt.Println(title)
	for i, m := range movers {
		fmt.Printf("  %2d. %-8s %+7.2f%%\n", i+1, m.Symbol, m.PercentChange)
	}
}
