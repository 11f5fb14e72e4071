// Package desk drives the paper trading loop: it evaluates each market snapshot,
// opens at most one plan at a time and walks it through PLANNED, ACTIVE and CLOSED.
package desk

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/execution"
	"github.com/maheshnellore19-collab/AI-Trader/internal/metrics"
	"github.com/maheshnellore19-collab/AI-Trader/internal/paper"
	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/risk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

// Exit reasons recorded on closed plans and in metrics.
const (
	ExitStopLoss  = "stop_loss"
	ExitTarget    = "target"
	ExitSquareOff = "square_off"
	ExitRandom    = "random"
)

// minMark keeps the simulated premium positive.
const minMark = 0.05

// Sim tunes execution and exit simulation.
type Sim struct {
	ExecutionDelay   time.Duration
	EntryProbability float64
	ExitProbability  float64
	PnLNoise         float64
}

// Options wires a Controller. Strategy, Builder, Account and Ledger are required.
type Options struct {
	Strategy strategy.Strategy
	Builder  *plan.Builder
	Gate     risk.Gate
	Account  *paper.Account
	Ledger   *paper.Ledger
	Executor *execution.Executor
	Sim      Sim
	Log      zerolog.Logger
	Clock    func() time.Time
	Seed     int64
}

// State is a point-in-time copy of everything the desk shows.
type State struct {
	Spot       float64           `json:"spot"`
	VIX        float64           `json:"vix"`
	Features   signal.FeatureSet `json:"features"`
	Signal     signal.Signal     `json:"signal"`
	Plan       *plan.TradePlan   `json:"plan"`
	Mark       float64           `json:"mark"`
	Realized   float64           `json:"realized_pnl"`
	Unrealized float64           `json:"unrealized_pnl"`
	DayPnL     float64           `json:"day_pnl"`
	Blocked    string            `json:"blocked,omitempty"`
	Ticks      int               `json:"ticks"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Controller owns the session's single open plan and P&L.
type Controller struct {
	strat    strategy.Strategy
	builder  *plan.Builder
	gate     risk.Gate
	account  *paper.Account
	ledger   *paper.Ledger
	executor *execution.Executor
	sim      Sim
	log      zerolog.Logger
	clock    func() time.Time
	rng      *rand.Rand

	mu    sync.RWMutex
	state State
	plan  *plan.TradePlan

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New builds a controller. A zero seed draws from the clock.
func New(opts Options) (*Controller, error) {
	if opts.Strategy == nil || opts.Builder == nil {
		return nil, fmt.Errorf("%w: strategy and plan builder are required", signal.ErrConfiguration)
	}
	if opts.Account == nil || opts.Ledger == nil {
		return nil, fmt.Errorf("%w: account and ledger are required", signal.ErrConfiguration)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Executor == nil {
		opts.Executor = execution.NewExecutor(opts.Log).WithClock(opts.Clock)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = opts.Clock().UnixNano()
	}
	return &Controller{
		strat:    opts.Strategy,
		builder:  opts.Builder,
		gate:     opts.Gate,
		account:  opts.Account,
		ledger:   opts.Ledger,
		executor: opts.Executor,
		sim:      opts.Sim,
		log:      opts.Log,
		clock:    opts.Clock,
		rng:      rand.New(rand.NewSource(seed)),
		subs:     make(map[int]func(State)),
	}, nil
}

// Run consumes snapshots until ctx is cancelled or in is closed.
func (c *Controller) Run(ctx context.Context, in <-chan signal.Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-in:
			if !ok {
				return nil
			}
			if err := c.OnSnapshot(snap); err != nil {
				c.log.Warn().Err(err).Msg("tick rejected")
			}
		}
	}
}

// OnSnapshot runs one driver tick. Evaluation and build errors are returned after
// the open plan has still been managed for this tick.
func (c *Controller) OnSnapshot(snap signal.Snapshot) error {
	now := snap.Ts
	if now.IsZero() {
		now = c.clock()
	}

	c.mu.Lock()
	c.state.Spot = snap.Spot
	c.state.VIX = snap.VIX
	c.state.Features = snap.Features
	c.state.Ticks++
	c.state.UpdatedAt = now

	sig, evalErr := c.strat.Evaluate(snap.Features)
	if evalErr != nil {
		metrics.EvaluationErrorsTotal.WithLabelValues("evaluate").Inc()
	} else {
		metrics.SignalsTotal.WithLabelValues(string(sig.Side)).Inc()
		if sig.IsActionable() && sig.Side != c.state.Signal.Side {
			c.log.Info().Str("side", string(sig.Side)).Str("grade", string(sig.Grade)).Msg("signal detected")
		}
		c.state.Signal = sig
	}

	c.manage(now)
	// exits above may have realized P&L the day-loss gate must see
	c.refresh()

	var buildErr error
	if c.plan == nil && evalErr == nil && sig.IsActionable() {
		buildErr = c.tryEnter(sig, snap, now)
	}

	c.refresh()
	state := c.copyState()
	c.mu.Unlock()

	c.publish(state)
	return errors.Join(evalErr, buildErr)
}

// manage advances the open plan. Caller holds c.mu.
func (c *Controller) manage(now time.Time) {
	p := c.plan
	if p == nil {
		return
	}
	switch p.Status {
	case plan.Planned:
		if c.gate.Session.MustSquareOff(now) {
			c.close(now, ExitSquareOff, 0, false)
			return
		}
		if now.Sub(p.CreatedAt) >= c.sim.ExecutionDelay {
			c.activate(now)
		}
	case plan.Active:
		if c.gate.Session.MustSquareOff(now) {
			c.close(now, ExitSquareOff, c.state.Mark, true)
			return
		}
		mark := c.state.Mark + (c.rng.Float64()-0.5)*c.sim.PnLNoise
		if mark < minMark {
			mark = minMark
		}
		c.state.Mark = plan.Round2(mark)
		switch {
		case c.state.Mark <= p.StopLoss:
			c.close(now, ExitStopLoss, c.state.Mark, true)
		case c.state.Mark >= p.Target2:
			c.close(now, ExitTarget, c.state.Mark, true)
		case c.rng.Float64() < c.sim.ExitProbability:
			c.close(now, ExitRandom, c.state.Mark, true)
		}
	}
}

func (c *Controller) activate(now time.Time) {
	p := c.plan
	fill, err := c.executor.Submit(execution.Order{
		PlanID: p.ID,
		Symbol: p.Symbol,
		Side:   execution.Buy,
		Qty:    p.Qty,
		Price:  p.EntryPrice,
		Ts:     now,
	})
	if err == nil {
		err = c.account.Apply(fill)
	}
	if err != nil {
		c.log.Error().Err(err).Str("symbol", p.Symbol).Msg("entry fill failed")
		c.close(now, "rejected", 0, false)
		return
	}
	p.Status = plan.Active
	c.state.Mark = p.EntryPrice
	c.log.Info().
		Str("symbol", p.Symbol).
		Int("qty", p.Qty).
		Float64("price", fill.Price).
		Time("at", fill.Ts).
		Msg("order executed")
}

// close ends the open plan, selling at price when filled is true.
func (c *Controller) close(now time.Time, reason string, price float64, filled bool) {
	p := c.plan
	if filled {
		fill, err := c.executor.Submit(execution.Order{
			PlanID: p.ID,
			Symbol: p.Symbol,
			Side:   execution.Sell,
			Qty:    p.Qty,
			Price:  price,
			Ts:     now,
		})
		if err == nil {
			err = c.account.Apply(fill)
		}
		if err != nil {
			c.log.Error().Err(err).Str("symbol", p.Symbol).Msg("exit fill failed")
			return
		}
		p.PnL = plan.Round2((price - p.EntryPrice) * float64(p.Qty))
	}
	p.Status = plan.Closed
	c.ledger.Record(*p)
	metrics.ExitsTotal.WithLabelValues(reason).Inc()
	c.log.Info().
		Str("symbol", p.Symbol).
		Str("reason", reason).
		Float64("pnl", p.PnL).
		Msg("exiting plan")
	c.plan = nil
	c.state.Mark = 0
}

// tryEnter runs the gates and, on a successful entry draw, builds a PLANNED plan.
func (c *Controller) tryEnter(sig signal.Signal, snap signal.Snapshot, now time.Time) error {
	if err := c.gate.Check(now, snap.VIX, c.state.DayPnL, c.openPlans()); err != nil {
		c.block(blockReason(err), err)
		return nil
	}
	c.state.Blocked = ""
	if c.rng.Float64() >= c.sim.EntryProbability {
		return nil
	}

	p, err := c.builder.BuildAt(sig, snap.Spot, now)
	if err != nil {
		metrics.EvaluationErrorsTotal.WithLabelValues("plan").Inc()
		return fmt.Errorf("build plan: %w", err)
	}
	if p == nil {
		return nil
	}
	if notional := p.EntryPrice * float64(p.Qty); !c.gate.Limits.Allow(notional) {
		c.block("capital", fmt.Errorf("notional %.2f above daily capital", notional))
		return nil
	}
	c.plan = p
	metrics.PlansTotal.WithLabelValues(string(p.Side)).Inc()
	c.log.Info().
		Str("symbol", p.Symbol).
		Float64("entry", p.EntryPrice).
		Float64("stop", p.StopLoss).
		Int("qty", p.Qty).
		Msg("generating trade plan")
	return nil
}

func (c *Controller) block(reason string, err error) {
	metrics.EntriesBlockedTotal.WithLabelValues(reason).Inc()
	if c.state.Blocked != reason {
		c.log.Info().Str("reason", reason).Err(err).Msg("entry blocked")
	}
	c.state.Blocked = reason
}

func blockReason(err error) string {
	switch {
	case errors.Is(err, risk.ErrOutsideSession):
		return "session"
	case errors.Is(err, risk.ErrVIXTooHigh):
		return "vix"
	case errors.Is(err, risk.ErrDayLossHit):
		return "day_loss"
	case errors.Is(err, risk.ErrPlanOpen):
		return "plan_open"
	default:
		return "other"
	}
}

func (c *Controller) openPlans() int {
	if c.plan == nil {
		return 0
	}
	return 1
}

// refresh recomputes P&L and gauges. Caller holds c.mu.
func (c *Controller) refresh() {
	c.state.Realized = plan.Round2(c.account.RealizedPnL())
	c.state.Unrealized = 0
	if c.plan != nil && c.plan.Status == plan.Active {
		c.state.Unrealized = plan.Round2((c.state.Mark - c.plan.EntryPrice) * float64(c.plan.Qty))
	}
	c.state.DayPnL = plan.Round2(c.state.Realized + c.state.Unrealized)
	c.state.Plan = c.plan
	metrics.DayPnL.Set(c.state.DayPnL)
	metrics.OpenPlans.Set(float64(c.openPlans()))
}

func (c *Controller) copyState() State {
	s := c.state
	s.Signal.Reason = append([]string(nil), c.state.Signal.Reason...)
	if c.plan != nil {
		p := *c.plan
		p.Reason = append([]string(nil), c.plan.Reason...)
		s.Plan = &p
	}
	return s
}

// State returns a copy of the current desk view.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyState()
}

// History returns the plans closed this session, oldest first.
func (c *Controller) History() []plan.TradePlan {
	return c.ledger.Snapshot()
}

// Account returns the paper account marked at the open plan's current premium.
func (c *Controller) Account() paper.Snapshot {
	c.mu.RLock()
	marks := map[string]float64{}
	if c.plan != nil && c.state.Mark > 0 {
		marks[c.plan.Symbol] = c.state.Mark
	}
	c.mu.RUnlock()
	return c.account.Snapshot(marks)
}

// Gate returns the configured risk gate.
func (c *Controller) Gate() risk.Gate { return c.gate }

// Evaluate runs the configured strategy without touching desk state.
func (c *Controller) Evaluate(f signal.FeatureSet) (signal.Signal, error) {
	return c.strat.Evaluate(f)
}

// Subscribe registers fn to receive a state copy after every tick.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) publish(s State) {
	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
