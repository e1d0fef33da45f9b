package backtest

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks structurally invalid backtest parameters. It is
// raised before any day is simulated, never mid-run.
var ErrInvalidConfig = errors.New("invalid backtest configuration")

// Allocate returns the dollar amount committed to each new position:
// the current cash balance scaled by the deployment fraction, divided
// evenly across positionCount slots. It has no side effects.
func Allocate(cashBalance, deploymentFraction float64, positionCount int) (float64, error) {
	if positionCount <= 0 {
		return 0, fmt.Errorf("%w: position count must be positive, got %d", ErrInvalidConfig, positionCount)
	}
	if deploymentFraction < 0 || deploymentFraction > 1 {
		return 0, fmt.Errorf("%w: deployment fraction must be in [0, 1], got %v", ErrInvalidConfig, deploymentFraction)
	}
	return cashBalance * deploymentFraction / float64(positionCount), nil
}
