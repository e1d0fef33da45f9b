package backtest

import (
	"testing"
	"time"

	"gaptrader/internal/domain"
	"gaptrader/internal/series"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

// addPair gives sym two consecutive bars so that its overnight change on
// day 2 is pct: close of 100 on day 1, open of 100+pct on day 2.
func addPair(s *series.Store, sym string, pct float64) {
	s.Add(sym, []domain.Bar{
		{Symbol: sym, Timestamp: day(1), Open: 100, Close: 100},
		{Symbol: sym, Timestamp: day(2), Open: 100 + pct, Close: 100 + pct},
	})
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name      string
		prevClose float64
		todayOpen float64
		want      float64
	}{
		{"gap up", 100, 105, 5},
		{"gap down", 100, 90, -10},
		{"flat", 50, 50, 0},
		{"zero previous close", 0, 42, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentChange(tt.prevClose, tt.todayOpen); got != tt.want {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.prevClose, tt.todayOpen, got, tt.want)
			}
		})
	}
}

func TestRankOrdersDescending(t *testing.T) {
	s := series.New()
	addPair(s, "LOW", -3)
	addPair(s, "HIGH", 8)
	addPair(s, "MID", 2)

	top, bottom := Ranker{Count: 1}.Rank(s, day(2))

	if len(top) != 1 || top[0].Symbol != "HIGH" {
		t.Errorf("top = %v, want [HIGH]", top)
	}
	if len(bottom) != 1 || bottom[0].Symbol != "LOW" {
		t.Errorf("bottom = %v, want [LOW]", bottom)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	s := series.New()
	addPair(s, "A", 5)
	addPair(s, "B", 5)
	addPair(s, "C", 3)

	top, _ := Ranker{Count: 3}.Rank(s, day(2))

	if len(top) != 3 {
		t.Fatalf("top has %d entries, want 3", len(top))
	}
	// A and B tie at +5: input (insertion) order must survive the sort.
	if top[0].Symbol != "A" || top[1].Symbol != "B" || top[2].Symbol != "C" {
		t.Errorf("top order = [%s %s %s], want [A B C]", top[0].Symbol, top[1].Symbol, top[2].Symbol)
	}
}

func TestRankSkipsSymbolsWithMissingBars(t *testing.T) {
	s := series.New()
	addPair(s, "FULL", 4)
	// Only one bar: no preceding entry, so no overnight change on day 2.
	s.Add("NEW", []domain.Bar{{Symbol: "NEW", Timestamp: day(2), Open: 10, Close: 10}})
	// No bar on day 2 at all.
	s.Add("GONE", []domain.Bar{
		{Symbol: "GONE", Timestamp: day(1), Open: 10, Close: 10},
	})

	top, bottom := Ranker{}.Rank(s, day(2))

	if len(top) != 1 || top[0].Symbol != "FULL" {
		t.Errorf("top = %v, want only FULL", top)
	}
	if len(bottom) != 1 || bottom[0].Symbol != "FULL" {
		t.Errorf("bottom = %v, want only FULL", bottom)
	}
}

func TestRankSmallUniverseOverlapPreserved(t *testing.T) {
	s := series.New()
	addPair(s, "A", 5)
	addPair(s, "B", -5)

	// Universe of 2 against lists of 10: both lists hold both symbols.
	top, bottom := Ranker{}.Rank(s, day(2))

	if len(top) != 2 || len(bottom) != 2 {
		t.Fatalf("top/bottom sizes = %d/%d, want 2/2", len(top), len(bottom))
	}
	if top[0].Symbol != "A" || bottom[1].Symbol != "B" {
		t.Errorf("unexpected ordering: top=%v bottom=%v", top, bottom)
	}
}

func TestRankDedupeRemovesOverlap(t *testing.T) {
	s := series.New()
	addPair(s, "A", 5)
	addPair(s, "B", -5)

	top, bottom := Ranker{Dedupe: true}.Rank(s, day(2))

	if len(top) != 2 {
		t.Fatalf("top has %d entries, want 2", len(top))
	}
	if len(bottom) != 0 {
		t.Errorf("bottom = %v, want empty after dedupe (all symbols already in top)", bottom)
	}
}
