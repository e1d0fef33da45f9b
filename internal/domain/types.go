// Package domain defines the core data types shared across gaptrader:
// OHLCV bars, mover rankings, and simulated trade records.
package domain

import "time"

// Bar is one trading day's OHLCV data for a single instrument.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// Mover pairs a symbol with its overnight percentage change: the move
// from the prior session's close to the current session's open.
type Mover struct {
	Symbol        string
	PercentChange float64
}

// TradeType identifies the role of a trade record within a simulated day.
type TradeType string

const (
	TradeBuy   TradeType = "buy"   // open a long position
	TradeSell  TradeType = "sell"  // open a short position
	TradeClose TradeType = "close" // flatten an open position
)

// TradeRecord is a single entry in the trade log. Records are immutable
// once created.
type TradeRecord struct {
	Date     time.Time
	Symbol   string
	Quantity int64 // signed: positive long, negative short
	Price    float64
	Type     TradeType
}

// Position is an intraday position held by the day simulator. Positions
// never persist past the simulated day.
type Position struct {
	Symbol     string
	Quantity   int64
	EntryPrice float64
}
