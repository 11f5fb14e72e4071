package plan

import (
	"fmt"
	"time"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

// PremiumSource quotes the option premium for a contract. The builder treats it as opaque.
type PremiumSource interface {
	Premium(symbol string, strike int64, kind OptionType) (float64, error)
}

// PremiumFunc adapts a plain function into a PremiumSource.
type PremiumFunc func(symbol string, strike int64, kind OptionType) (float64, error)

// Premium implements PremiumSource.
func (f PremiumFunc) Premium(symbol string, strike int64, kind OptionType) (float64, error) {
	return f(symbol, strike, kind)
}

// Builder binds plan parameters to a premium source and a clock.
type Builder struct {
	params Params
	quotes PremiumSource
	clock  func() time.Time
}

// NewBuilder wires a builder; a nil clock falls back to time.Now.
func NewBuilder(params Params, quotes PremiumSource, clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	return &Builder{params: params.withDefaults(), quotes: quotes, clock: clock}
}

// Build quotes the ATM contract and returns a PLANNED plan, or nil for a NONE signal.
func (b *Builder) Build(sig signal.Signal, spot float64) (*TradePlan, error) {
	return b.BuildAt(sig, spot, b.clock())
}

// BuildAt is Build with an explicit entry time, used when replaying recorded sessions.
func (b *Builder) BuildAt(sig signal.Signal, spot float64, now time.Time) (*TradePlan, error) {
	if !sig.IsActionable() {
		return nil, nil
	}
	if !finitePositive(spot) {
		return nil, fmt.Errorf("%w: spot %v must be positive", signal.ErrInvalidInput, spot)
	}
	strike := ATMStrike(spot, b.params.StrikeStep)
	kind := OptionTypeFor(sig.Side)
	symbol := Symbol(b.params.SymbolRoot, b.params.Expiry, strike, kind)
	premium, err := b.quotes.Premium(symbol, strike, kind)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return Build(sig, spot, premium, b.params, now)
}
