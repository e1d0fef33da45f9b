// Package fetch assembles historical daily bar data into the in-memory
// price series the backtest core consumes. Data comes either from the
// Alpaca market-data API or from the local bar cache; all fetching
// finishes before the core runs, so the core itself never performs I/O.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"gaptrader/internal/domain"
	"gaptrader/internal/series"
	"gaptrader/internal/store"
	"gaptrader/internal/util"
)

// Fetcher downloads daily bar history from the Alpaca market-data API.
// Symbols whose fetch fails end up absent from the result — the
// backtest core never observes fetch errors, only missing data.
type Fetcher struct {
	client    *marketdata.Client
	batchSize int
	workers   int
	limiter   *util.RateLimiter
	feed      string
	log       *slog.Logger
}

// NewFetcher creates a Fetcher configured with the given Alpaca
// credentials and batching parameters.
func NewFetcher(apiKey, apiSecret, dataURL string, batchSize, maxWorkers, rateLimitPerMin int, feed string) *Fetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &Fetcher{
		client:    marketdata.NewClient(opts),
		batchSize: max(batchSize, 1),
		workers:   max(maxWorkers, 1),
		limiter:   util.NewRateLimiter(rateLimitPerMin),
		feed:      feed,
		log:       slog.Default().With("component", "fetch"),
	}
}

// FetchBars fetches daily bars for all symbols in [start, end],
// batching symbols per API call and fanning batches out across a worker
// pool. Failed batches are logged and skipped; their symbols are simply
// missing from the result.
func (f *Fetcher) FetchBars(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	grouped, err := f.fetchGrouped(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	var bars []domain.Bar
	for _, sym := range symbols {
		bars = append(bars, grouped[strings.ToUpper(sym)]...)
	}
	return bars, nil
}

// FetchSeries fetches daily bars and assembles them into a series
// store. Symbols are added in the order given, so the first requested
// symbol with data defines the backtest date axis.
func (f *Fetcher) FetchSeries(ctx context.Context, symbols []string, start, end time.Time) (*series.Store, error) {
	grouped, err := f.fetchGrouped(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}

	s := series.New()
	for _, sym := range symbols {
		s.Add(strings.ToUpper(sym), grouped[strings.ToUpper(sym)])
	}
	f.log.Info("series assembled", "requested", len(symbols), "withData", s.Len())
	return s, nil
}

func (f *Fetcher) fetchGrouped(ctx context.Context, symbols []string, start, end time.Time) (map[string][]domain.Bar, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to fetch")
	}

	var batches [][]string
	for i := 0; i < len(symbols); i += f.batchSize {
		batches = append(batches, symbols[i:min(i+f.batchSize, len(symbols))])
	}

	batchCh := make(chan []string, len(batches))
	for _, b := range batches {
		batchCh <- b
	}
	close(batchCh)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		grouped = make(map[string][]domain.Bar)
	)

	workers := min(f.workers, len(batches))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchCh {
				if ctx.Err() != nil {
					return
				}
				bars, err := f.fetchBatch(ctx, batch, start, end)
				if err != nil {
					// Recovered per batch: the symbols stay absent.
					f.log.Warn("batch fetch failed", "symbols", len(batch), "err", err)
					continue
				}
				mu.Lock()
				for _, b := range bars {
					grouped[b.Symbol] = append(grouped[b.Symbol], b)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return grouped, nil
}

// fetchBatch fetches daily bars for one batch of symbols in a single
// API call, with rate limiting and retry on transient failures.
func (f *Fetcher) fetchBatch(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var multiBars map[string][]marketdata.Bar
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		multiBars, err = f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
			Feed:      marketdata.Feed(f.feed),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			})
		}
	}
	return bars, nil
}

// LoadSeries builds a series store from the local bar cache. When
// symbols is empty every cached symbol is loaded. Symbols without
// cached bars in the range are skipped.
func LoadSeries(ctx context.Context, bs store.BarStore, symbols []string, start, end time.Time) (*series.Store, error) {
	if len(symbols) == 0 {
		cached, err := bs.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing cached symbols: %w", err)
		}
		symbols = cached
	}

	s := series.New()
	for _, sym := range symbols {
		bars, err := bs.ReadBars(ctx, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading bars for %s: %w", sym, err)
		}
		s.Add(strings.ToUpper(sym), bars)
	}
	return s, nil
}
