// Package series provides the in-memory price series store consumed by
// the backtest core. It is populated once from historical data before a
// run and treated as immutable while the run is in progress.
package series

import (
	"sort"
	"time"

	"gaptrader/internal/domain"
)

// DateKey formats t as the YYYY-MM-DD key used to address daily bars.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Store maps instrument symbols to date-ascending daily bar series.
// Symbols keep their insertion order: the first symbol added defines the
// backtest date axis, and ranking iterates symbols in this order so that
// stable tie-breaking stays deterministic across runs.
type Store struct {
	symbols []string
	series  map[string][]domain.Bar
	index   map[string]map[string]int // symbol → date key → offset into series
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		series: make(map[string][]domain.Bar),
		index:  make(map[string]map[string]int),
	}
}

// Add merges bars into the symbol's series, keeping it sorted by date
// with no duplicate dates. When the same date arrives twice the later
// bar wins. Adding an empty slice registers nothing.
func (s *Store) Add(symbol string, bars []domain.Bar) {
	if len(bars) == 0 {
		return
	}
	if _, ok := s.series[symbol]; !ok {
		s.symbols = append(s.symbols, symbol)
	}

	merged := make([]domain.Bar, 0, len(s.series[symbol])+len(bars))
	merged = append(merged, s.series[symbol]...)
	merged = append(merged, bars...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	deduped := make([]domain.Bar, 0, len(merged))
	for _, b := range merged {
		if n := len(deduped); n > 0 && DateKey(deduped[n-1].Timestamp) == DateKey(b.Timestamp) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}

	idx := make(map[string]int, len(deduped))
	for i, b := range deduped {
		idx[DateKey(b.Timestamp)] = i
	}
	s.series[symbol] = deduped
	s.index[symbol] = idx
}

// Symbols returns all symbols in insertion order.
func (s *Store) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Len returns the number of symbols held.
func (s *Store) Len() int {
	return len(s.symbols)
}

// Bar returns the bar for symbol on date. The second return value
// reports whether such a bar exists.
func (s *Store) Bar(symbol string, date time.Time) (domain.Bar, bool) {
	i, ok := s.index[symbol][DateKey(date)]
	if !ok {
		return domain.Bar{}, false
	}
	return s.series[symbol][i], true
}

// Prev returns the bar immediately preceding date in the symbol's own
// series — the previous entry, not necessarily the previous calendar
// day. It reports false when the symbol has no bar on date or date is
// the first entry.
func (s *Store) Prev(symbol string, date time.Time) (domain.Bar, bool) {
	i, ok := s.index[symbol][DateKey(date)]
	if !ok || i == 0 {
		return domain.Bar{}, false
	}
	return s.series[symbol][i-1], true
}

// Dates returns the date axis of the given symbol, ascending.
func (s *Store) Dates(symbol string) []time.Time {
	bars := s.series[symbol]
	out := make([]time.Time, len(bars))
	for i, b := range bars {
		out[i] = b.Timestamp
	}
	return out
}

// OpenPrices returns a symbol → open price snapshot for every symbol
// that has a bar on date. Symbols without a bar are absent from the map,
// not zero.
func (s *Store) OpenPrices(date time.Time) map[string]float64 {
	return s.prices(date, func(b domain.Bar) float64 { return b.Open })
}

// ClosePrices returns a symbol → close price snapshot for every symbol
// that has a bar on date.
func (s *Store) ClosePrices(date time.Time) map[string]float64 {
	return s.prices(date, func(b domain.Bar) float64 { return b.Close })
}

func (s *Store) prices(date time.Time, pick func(domain.Bar) float64) map[string]float64 {
	out := make(map[string]float64, len(s.symbols))
	for _, sym := range s.symbols {
		if b, ok := s.Bar(sym, date); ok {
			out[sym] = pick(b)
		}
	}
	return out
}
