package paper

import (
	"errors"
	"sync"

	"github.com/maheshnellore19-collab/AI-Trader/internal/execution"
)

type positionState struct {
	Qty     int
	AvgCost float64
}

// Account tracks virtual cash, realized PnL, and per-contract positions while trading in paper mode.
type Account struct {
	mu           sync.Mutex
	startingCash float64
	cash         float64
	realizedPnL  float64
	positions    map[string]positionState
}

// PositionSnapshot exposes a read-only view of a single contract position.
type PositionSnapshot struct {
	Qty         int     `json:"qty"`
	AvgCost     float64 `json:"avg_cost"`
	MarketValue float64 `json:"market_value"`
	Unrealized  float64 `json:"unrealized"`
}

// Snapshot represents a thread-safe view of the account state, optionally marked to market using provided prices.
type Snapshot struct {
	StartingCash float64                     `json:"starting_cash"`
	Cash         float64                     `json:"cash"`
	RealizedPnL  float64                     `json:"realized_pnl"`
	Unrealized   float64                     `json:"unrealized_pnl"`
	Equity       float64                     `json:"equity"`
	Positions    map[string]PositionSnapshot `json:"positions"`
}

// NewAccount constructs an account populated with starting cash.
func NewAccount(startingCash float64) *Account {
	return &Account{
		startingCash: startingCash,
		cash:         startingCash,
		positions:    make(map[string]positionState),
	}
}

// Apply books an executed fill.
func (a *Account) Apply(fill execution.Fill) error {
	return a.MarketFill(fill.Symbol, fill.Side, fill.Qty, fill.Price)
}

// MarketFill executes a market order at the provided premium, mutating balances if successful.
func (a *Account) MarketFill(symbol string, side execution.Side, qty int, price float64) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	if price <= 0 {
		return errors.New("price must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.positions[symbol]
	notional := float64(qty) * price

	switch side {
	case execution.Buy:
		if notional > a.cash {
			return errors.New("insufficient cash for buy")
		}
		newQty := state.Qty + qty
		newAvg := ((state.AvgCost * float64(state.Qty)) + notional) / float64(newQty)
		a.cash -= notional
		a.positions[symbol] = positionState{Qty: newQty, AvgCost: newAvg}

	case execution.Sell:
		if state.Qty < qty {
			return errors.New("insufficient position to sell")
		}
		a.realizedPnL += (price - state.AvgCost) * float64(qty)
		a.cash += notional
		newQty := state.Qty - qty
		if newQty == 0 {
			delete(a.positions, symbol)
		} else {
			a.positions[symbol] = positionState{Qty: newQty, AvgCost: state.AvgCost}
		}

	default:
		return errors.New("unknown order side")
	}
	return nil
}

// Snapshot returns a copy of balances, optionally marked using the supplied premiums.
func (a *Account) Snapshot(prices map[string]float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	positions := make(map[string]PositionSnapshot, len(a.positions))
	equity := a.cash
	var unrealized float64
	for sym, pos := range a.positions {
		mark, ok := prices[sym]
		if !ok || mark <= 0 {
			mark = pos.AvgCost
		}
		ps := PositionSnapshot{
			Qty:         pos.Qty,
			AvgCost:     pos.AvgCost,
			MarketValue: float64(pos.Qty) * mark,
			Unrealized:  (mark - pos.AvgCost) * float64(pos.Qty),
		}
		positions[sym] = ps
		equity += ps.MarketValue
		unrealized += ps.Unrealized
	}

	return Snapshot{
		StartingCash: a.startingCash,
		Cash:         a.cash,
		RealizedPnL:  a.realizedPnL,
		Unrealized:   unrealized,
		Equity:       equity,
		Positions:    positions,
	}
}

// Position returns the current contract count for the supplied symbol.
func (a *Account) Position(symbol string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[symbol].Qty
}

// RealizedPnL returns total closed-trade profit and loss.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL
}
