package backtest

import (
	"context"
	"log/slog"

	"gaptrader/internal/domain"
	"gaptrader/internal/series"
)

// Config holds the parameters of a backtest run.
type Config struct {
	InitialCash        float64
	DeploymentFraction float64 // fraction of cash deployed each day, in [0, 1]
	PositionCount      int     // slots the deployed cash is divided across
	MoverCount         int     // entries per mover list; 0 means DefaultMoverCount
	Dedupe             bool    // suppress top/bottom overlap in small universes
}

// State is the accumulated outcome of a backtest run. It is owned
// exclusively by one Engine invocation for the run's duration.
type State struct {
	CashBalance float64
	PnLHistory  []float64
	TradeLog    []domain.TradeRecord
}

// Engine drives the day-by-day simulation across the full historical
// window, compounding the cash balance from one day to the next.
//
// The date axis comes from the first symbol added to the store; symbols
// whose own calendars have gaps silently contribute nothing on the
// affected days.
type Engine struct {
	store  *series.Store
	cfg    Config
	ranker Ranker
	log    *slog.Logger
}

// New validates cfg and returns a ready Engine. Structurally invalid
// configuration is rejected here, before any day is simulated.
func New(store *series.Store, cfg Config, logger *slog.Logger) (*Engine, error) {
	if _, err := Allocate(cfg.InitialCash, cfg.DeploymentFraction, cfg.PositionCount); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		cfg:    cfg,
		ranker: Ranker{Count: cfg.MoverCount, Dedupe: cfg.Dedupe},
		log:    logger.With("component", "backtest"),
	}, nil
}

// Run walks every trading date on the axis in ascending order: rank
// movers, size positions from the current cash balance, simulate the
// day's round trip, and fold the realized PnL back into the balance. A
// day with no usable data degrades to a zero-PnL contribution rather
// than aborting; the run always returns a full PnL history and trade
// log. Cancelling ctx stops the walk early and returns the state
// accumulated so far alongside ctx's error.
func (e *Engine) Run(ctx context.Context) (*State, error) {
	state := &State{CashBalance: e.cfg.InitialCash}

	symbols := e.store.Symbols()
	if len(symbols) == 0 {
		return state, nil
	}
	dates := e.store.Dates(symbols[0])

	e.log.Info("run starting",
		"symbols", len(symbols),
		"days", len(dates),
		"initialCash", e.cfg.InitialCash,
	)

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		top, bottom := e.ranker.Rank(e.store, date)

		// Sized from the current balance, not the initial cash: the
		// balance compounds day over day.
		perPosition, err := Allocate(state.CashBalance, e.cfg.DeploymentFraction, e.cfg.PositionCount)
		if err != nil {
			return state, err
		}

		day := SimulateDay(date, top, bottom, perPosition,
			e.store.OpenPrices(date), e.store.ClosePrices(date))

		state.PnLHistory = append(state.PnLHistory, day.RealizedPnL)
		state.CashBalance += day.RealizedPnL
		state.TradeLog = append(state.TradeLog, day.Opened...)
		state.TradeLog = append(state.TradeLog, day.Closed...)

		e.log.Debug("day simulated",
			"date", series.DateKey(date),
			"opened", len(day.Opened),
			"pnl", day.RealizedPnL,
			"cash", state.CashBalance,
		)
	}

	e.log.Info("run complete",
		"days", len(state.PnLHistory),
		"trades", len(state.TradeLog),
		"finalCash", state.CashBalance,
	)
	return state, nil
}
