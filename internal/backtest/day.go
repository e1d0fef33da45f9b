package backtest

import (
	"time"

	"gaptrader/internal/domain"
)

// DayResult holds the outcome of one simulated trading day.
type DayResult struct {
	Opened      []domain.TradeRecord
	Closed      []domain.TradeRecord
	RealizedPnL float64
}

// SimulateDay opens positions sized from perPosition at the day's open
// prices — long for top movers, short for bottom movers — then closes
// every one of them at the day's close and returns the realized PnL.
// Symbols absent from openPrices are skipped without error, as are
// symbols whose computed quantity rounds to zero. The function holds no
// state across calls: positions never outlive the simulated day.
func SimulateDay(
	date time.Time,
	top, bottom []domain.Mover,
	perPosition float64,
	openPrices, closePrices map[string]float64,
) DayResult {
	var res DayResult
	var positions []domain.Position

	open := func(movers []domain.Mover, tradeType domain.TradeType) {
		for _, m := range movers {
			price, ok := openPrices[m.Symbol]
			if !ok || price <= 0 {
				continue
			}
			qty := int64(perPosition / price)
			if qty == 0 {
				continue
			}
			if tradeType == domain.TradeSell {
				qty = -qty
			}
			positions = append(positions, domain.Position{
				Symbol:     m.Symbol,
				Quantity:   qty,
				EntryPrice: price,
			})
			res.Opened = append(res.Opened, domain.TradeRecord{
				Date:     date,
				Symbol:   m.Symbol,
				Quantity: qty,
				Price:    price,
				Type:     tradeType,
			})
		}
	}
	open(top, domain.TradeBuy)
	open(bottom, domain.TradeSell)

	for _, pos := range positions {
		closePrice := closePrices[pos.Symbol]
		// Signed quantity makes this correct for longs and shorts alike.
		res.RealizedPnL += (closePrice - pos.EntryPrice) * float64(pos.Quantity)
		res.Closed = append(res.Closed, domain.TradeRecord{
			Date:     date,
			Symbol:   pos.Symbol,
			Quantity: -pos.Quantity,
			Price:    closePrice,
			Type:     domain.TradeClose,
		})
	}
	return res
}
