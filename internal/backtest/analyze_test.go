package backtest

import (
	"errors"
	"math"
	"testing"
)

func TestCumulativePnL(t *testing.T) {
	got := CumulativePnL([]float64{100, -30, 50})
	want := []float64{100, 70, 120}
	if len(got) != len(want) {
		t.Fatalf("CumulativePnL returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CumulativePnL[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if out := CumulativePnL(nil); len(out) != 0 {
		t.Errorf("CumulativePnL(nil) = %v, want empty", out)
	}
}

func TestSummarize(t *testing.T) {
	pnl := []float64{100, -30, 50}
	sum, err := Summarize(pnl, 10000, DefaultRiskFreeRate)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalPnL != 120 {
		t.Errorf("TotalPnL = %v, want 120", sum.TotalPnL)
	}
	if sum.FinalValue != 10120 {
		t.Errorf("FinalValue = %v, want 10120", sum.FinalValue)
	}
	if sum.SharpeRatio == 0 {
		t.Error("SharpeRatio should be non-zero for this history")
	}
}

func TestSharpeRatioValue(t *testing.T) {
	// mean = 2, sample stddev = sqrt(2).
	pnl := []float64{1, 3}
	got, err := SharpeRatio(pnl, 0.02)
	if err != nil {
		t.Fatalf("SharpeRatio: %v", err)
	}
	want := (2 - 0.02/252) / math.Sqrt2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("SharpeRatio = %v, want %v", got, want)
	}
}

func TestSharpeRatioUndefined(t *testing.T) {
	tests := []struct {
		name string
		pnl  []float64
	}{
		{"empty history", nil},
		{"single observation", []float64{42}},
		{"zero variance", []float64{5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SharpeRatio(tt.pnl, DefaultRiskFreeRate)
			if !errors.Is(err, ErrUndefinedStatistic) {
				t.Errorf("SharpeRatio error = %v, want ErrUndefinedStatistic", err)
			}
		})
	}
}

func TestSummarizeUndefinedSharpeKeepsTotals(t *testing.T) {
	sum, err := Summarize([]float64{0, 0}, 1000, DefaultRiskFreeRate)
	if !errors.Is(err, ErrUndefinedStatistic) {
		t.Fatalf("Summarize error = %v, want ErrUndefinedStatistic", err)
	}
	// The run completed: totals stay valid even when the ratio doesn't.
	if sum.TotalPnL != 0 || sum.FinalValue != 1000 {
		t.Errorf("Summary = %+v, want TotalPnL 0 and FinalValue 1000", sum)
	}
}
