// Package backtest implements the overnight-mover strategy core: ranking
// instruments by overnight change, allocating capital, simulating one
// round-trip trading day, driving the simulation across a historical
// window, and summarizing the resulting PnL history.
package backtest

import (
	"sort"
	"time"

	"gaptrader/internal/domain"
	"gaptrader/internal/series"
)

// DefaultMoverCount is the number of entries in each of the top and
// bottom mover lists when no count is configured.
const DefaultMoverCount = 10

// PercentChange is the overnight move from the prior session's close to
// the current session's open, in percent. A zero previous close yields
// 0, never NaN or Inf.
func PercentChange(prevClose, todayOpen float64) float64 {
	if prevClose == 0 {
		return 0
	}
	return (todayOpen - prevClose) / prevClose * 100
}

// Ranker selects the top and bottom overnight movers for a trading day.
type Ranker struct {
	Count  int  // entries per list; 0 means DefaultMoverCount
	Dedupe bool // drop symbols from bottom that already made top
}

// Rank computes each symbol's overnight change on date and splits the
// descending-sorted result into top and bottom movers. Symbols missing a
// bar on date, or missing a preceding bar in their own series, are
// skipped. When the ranked universe holds fewer than twice Count
// symbols, top and bottom may overlap; that is deliberate and only
// suppressed when Dedupe is set.
func (r Ranker) Rank(store *series.Store, date time.Time) (top, bottom []domain.Mover) {
	count := r.Count
	if count <= 0 {
		count = DefaultMoverCount
	}

	var movers []domain.Mover
	for _, sym := range store.Symbols() {
		today, ok := store.Bar(sym, date)
		if !ok {
			continue
		}
		prev, ok := store.Prev(sym, date)
		if !ok {
			continue
		}
		movers = append(movers, domain.Mover{
			Symbol:        sym,
			PercentChange: PercentChange(prev.Close, today.Open),
		})
	}

	// Equal changes keep their input order; downstream position
	// membership depends on the sort being stable.
	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].PercentChange > movers[j].PercentChange
	})

	n := len(movers)
	top = movers[:min(count, n)]
	bottom = movers[max(0, n-count):]

	if r.Dedupe {
		bottom = excludeSymbols(bottom, top)
	}
	return top, bottom
}

func excludeSymbols(movers, exclude []domain.Mover) []domain.Mover {
	if len(exclude) == 0 {
		return movers
	}
	seen := make(map[string]struct{}, len(exclude))
	for _, m := range exclude {
		seen[m.Symbol] = struct{}{}
	}
	out := make([]domain.Mover, 0, len(movers))
	for _, m := range movers {
		if _, dup := seen[m.Symbol]; dup {
			continue
		}
		out = append(out, m)
	}
	return out
}
