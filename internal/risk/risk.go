// Package risk sizes option positions and gates new entries against account limits.
package risk

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Limits mirrors the desk's risk configuration.
type Limits struct {
	DailyCapital      float64 `json:"daily_capital"`
	MaxDayLoss        float64 `json:"max_day_loss"`
	MaxTradeRisk      float64 `json:"max_trade_risk"`
	MaxOpenPositions  int     `json:"max_open_positions"`
	DisableOnVIXAbove float64 `json:"disable_on_vix_above"`
}

// Allow reports whether a position of the given notional fits the daily capital cap.
// A zero cap disables the check.
func (l Limits) Allow(notional float64) bool {
	if l.DailyCapital <= 0 {
		return true
	}
	return notional <= l.DailyCapital
}

// Lots converts per-share risk into a lot count.
// The capital-based division is clamped to [1, MaxOpenPositions], so the position-count
// cap overrides the remaining risk budget.
func (l Limits) Lots(riskPerShare float64, lotSize int) int {
	lots := 0
	if riskPerShare > 0 && lotSize > 0 {
		lots = int(math.Floor(l.MaxTradeRisk / (riskPerShare * float64(lotSize))))
	}
	if lots > l.MaxOpenPositions {
		lots = l.MaxOpenPositions
	}
	if lots < 1 {
		lots = 1
	}
	return lots
}

// Quantity returns Lots multiplied back into contracts.
func (l Limits) Quantity(riskPerShare float64, lotSize int) int {
	return l.Lots(riskPerShare, lotSize) * lotSize
}

// Reasons an entry can be refused before a plan is built.
var (
	ErrOutsideSession = errors.New("outside entry session")
	ErrVIXTooHigh     = errors.New("vix above disable level")
	ErrDayLossHit     = errors.New("max day loss reached")
	ErrPlanOpen       = errors.New("plan already open")
)

// Gate bundles the pre-entry checks the driver runs each tick.
type Gate struct {
	Limits  Limits
	Session Session
}

// Check returns nil when a new plan may be opened.
func (g Gate) Check(now time.Time, vix, dayPnL float64, openPlans int) error {
	if openPlans > 0 {
		return ErrPlanOpen
	}
	if !g.Session.CanEnter(now) {
		return ErrOutsideSession
	}
	if g.Limits.DisableOnVIXAbove > 0 && vix > g.Limits.DisableOnVIXAbove {
		return fmt.Errorf("%w: %.2f > %.2f", ErrVIXTooHigh, vix, g.Limits.DisableOnVIXAbove)
	}
	if g.Limits.MaxDayLoss > 0 && dayPnL <= -g.Limits.MaxDayLoss {
		return fmt.Errorf("%w: %.2f", ErrDayLossHit, dayPnL)
	}
	return nil
}
