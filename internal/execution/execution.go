// Package execution handles paper order submission for trade plans.
package execution

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/metrics"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy opens a long option position.
	Buy Side = "BUY"
	// Sell closes it.
	Sell Side = "SELL"
)

// Order represents a placement request the executor can process.
type Order struct {
	PlanID string
	Symbol string
	Side   Side
	Qty    int
	Price  float64
	Ts     time.Time // zero stamps the fill with the executor clock
}

// Fill is the paper execution result of an order.
type Fill struct {
	PlanID string    `json:"plan_id"`
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Qty    int       `json:"qty"`
	Price  float64   `json:"price"`
	Ts     time.Time `json:"ts"`
}

// Executor implements a logger-backed submitter for orders. Nothing leaves the process.
type Executor struct {
	log   zerolog.Logger
	clock func() time.Time
}

// NewExecutor wraps a zerolog logger for order submissions.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log, clock: time.Now} }

// WithClock overrides the timestamp source used for fills.
func (executor *Executor) WithClock(clock func() time.Time) *Executor {
	if clock != nil {
		executor.clock = clock
	}
	return executor
}

// Submit logs the order and fills it in full at the requested price.
func (executor *Executor) Submit(order Order) (Fill, error) {
	if order.Qty <= 0 {
		return Fill{}, errors.New("quantity must be positive")
	}
	if order.Price <= 0 {
		return Fill{}, errors.New("price must be positive")
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	executor.log.Info().
		Str("plan", order.PlanID).
		Str("sym", order.Symbol).
		Str("side", string(order.Side)).
		Int("qty", order.Qty).
		Float64("px", order.Price).
		Msg("submit order (paper)")
	ts := order.Ts
	if ts.IsZero() {
		ts = executor.clock()
	}
	return Fill{
		PlanID: order.PlanID,
		Symbol: order.Symbol,
		Side:   order.Side,
		Qty:    order.Qty,
		Price:  order.Price,
		Ts:     ts,
	}, nil
}
