package backtest

import (
	"errors"
	"fmt"
	"math"
)

// ErrUndefinedStatistic is returned when a summary statistic has no
// defined value, such as a Sharpe ratio over a zero-variance PnL
// history. It surfaces to the analyzer's caller; the backtest run
// itself has already completed by then.
var ErrUndefinedStatistic = errors.New("undefined statistic")

// DefaultRiskFreeRate is the annualized risk-free rate used when the
// caller does not supply one.
const DefaultRiskFreeRate = 0.02

const tradingDaysPerYear = 252

// Summary holds the post-run performance statistics.
type Summary struct {
	FinalValue  float64
	TotalPnL    float64
	SharpeRatio float64
}

// CumulativePnL returns the running sum of the PnL history.
func CumulativePnL(pnlHistory []float64) []float64 {
	out := make([]float64, len(pnlHistory))
	var sum float64
	for i, p := range pnlHistory {
		sum += p
		out[i] = sum
	}
	return out
}

// Summarize computes the final portfolio value, total PnL, and Sharpe
// ratio for a completed run. When the Sharpe ratio is undefined the
// returned Summary still carries valid FinalValue and TotalPnL
// alongside an ErrUndefinedStatistic error.
func Summarize(pnlHistory []float64, initialCash, riskFreeRate float64) (Summary, error) {
	var total float64
	for _, p := range pnlHistory {
		total += p
	}
	s := Summary{
		TotalPnL:   total,
		FinalValue: initialCash + total,
	}

	sharpe, err := SharpeRatio(pnlHistory, riskFreeRate)
	if err != nil {
		return s, err
	}
	s.SharpeRatio = sharpe
	return s, nil
}

// SharpeRatio computes (mean − riskFree/252) / stddev over the daily
// PnL history, using the sample standard deviation. Histories with
// fewer than two observations or zero variance have no defined ratio.
func SharpeRatio(pnlHistory []float64, riskFreeRate float64) (float64, error) {
	n := len(pnlHistory)
	if n < 2 {
		return 0, fmt.Errorf("%w: need at least two PnL observations, got %d", ErrUndefinedStatistic, n)
	}

	var sum float64
	for _, p := range pnlHistory {
		sum += p
	}
	mean := sum / float64(n)

	var squares float64
	for _, p := range pnlHistory {
		d := p - mean
		squares += d * d
	}
	stddev := math.Sqrt(squares / float64(n-1))
	if stddev == 0 {
		return 0, fmt.Errorf("%w: zero-variance PnL history", ErrUndefinedStatistic)
	}

	return (mean - riskFreeRate/tradingDaysPerYear) / stddev, nil
}
