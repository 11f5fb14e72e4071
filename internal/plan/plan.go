// Package plan converts actionable signals into concrete option trade plans.
package plan

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maheshnellore19-collab/AI-Trader/internal/risk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

// Status tracks a plan through the driver's lifecycle.
type Status string

const (
	Planned Status = "PLANNED"
	Active  Status = "ACTIVE"
	Closed  Status = "CLOSED"
)

// OptionType is the contract suffix appended to the symbol.
type OptionType string

const (
	Call OptionType = "CE"
	Put  OptionType = "PE"
)

const (
	stopFraction  = 0.35
	minStopWidth  = 15.0
	target1Factor = 1.30
	target2Factor = 1.60

	// DefaultLotSize is the NIFTY contract multiple.
	DefaultLotSize = 50
	// DefaultStrikeStep is the NIFTY strike spacing.
	DefaultStrikeStep = 50
	// DefaultExpiry is the expiry tag embedded in symbols.
	DefaultExpiry = "WEEKLY"
)

// TradePlan is the fabricated option trade the driver tracks.
// Invariant: StopLoss < EntryPrice < Target1 < Target2.
type TradePlan struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       signal.Side `json:"side"`
	Strike     int64       `json:"strike"`
	EntryTime  string      `json:"entry_time"`
	EntryPrice float64     `json:"entry_price"`
	StopLoss   float64     `json:"stop_loss"`
	Target1    float64     `json:"target_1"`
	Target2    float64     `json:"target_2"`
	Qty        int         `json:"qty"`
	Reason     []string    `json:"reason"`
	Status     Status      `json:"status"`
	PnL        float64     `json:"pnl,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Params carries the configuration the builder needs besides the signal.
type Params struct {
	SymbolRoot string
	Expiry     string
	LotSize    int
	StrikeStep int
	Limits     risk.Limits
}

func (p Params) withDefaults() Params {
	if p.Expiry == "" {
		p.Expiry = DefaultExpiry
	}
	if p.LotSize == 0 {
		p.LotSize = DefaultLotSize
	}
	if p.StrikeStep == 0 {
		p.StrikeStep = DefaultStrikeStep
	}
	return p
}

// Round2 rounds a price to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ATMStrike rounds spot to the nearest strike multiple.
func ATMStrike(spot float64, step int) int64 {
	return int64(math.Round(spot/float64(step))) * int64(step)
}

// OptionTypeFor maps a signal side to the contract suffix.
func OptionTypeFor(side signal.Side) OptionType {
	if side == signal.BuyCall {
		return Call
	}
	return Put
}

// Symbol joins root, expiry, strike and option type, e.g. NIFTYWEEKLY24350CE.
func Symbol(root, expiry string, strike int64, kind OptionType) string {
	return root + expiry + strconv.FormatInt(strike, 10) + string(kind)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Build constructs a PLANNED trade plan. It returns nil without error for a NONE signal.
func Build(sig signal.Signal, spot, premium float64, params Params, now time.Time) (*TradePlan, error) {
	if !sig.IsActionable() {
		return nil, nil
	}
	params = params.withDefaults()
	if !finitePositive(spot) {
		return nil, fmt.Errorf("%w: spot %v must be positive", signal.ErrInvalidInput, spot)
	}
	if !finitePositive(premium) {
		return nil, fmt.Errorf("%w: premium %v must be positive", signal.ErrInvalidInput, premium)
	}
	if params.LotSize < 0 || params.StrikeStep < 0 {
		return nil, fmt.Errorf("%w: lot size %d and strike step %d must be positive", signal.ErrInvalidInput, params.LotSize, params.StrikeStep)
	}

	strike := ATMStrike(spot, params.StrikeStep)
	kind := OptionTypeFor(sig.Side)

	entry := Round2(premium)
	width := math.Max(stopFraction*entry, minStopWidth)
	stop := Round2(entry - width)
	t1 := Round2(entry * target1Factor)
	t2 := Round2(entry * target2Factor)
	if !(stop > 0 && stop < entry && entry < t1 && t1 < t2) {
		return nil, fmt.Errorf("%w: premium %.2f yields stop %.2f outside (0, entry)", signal.ErrInvalidInput, entry, stop)
	}

	riskPerShare := entry - stop
	qty := params.Limits.Quantity(riskPerShare, params.LotSize)

	return &TradePlan{
		ID:         uuid.NewString(),
		Symbol:     Symbol(params.SymbolRoot, params.Expiry, strike, kind),
		Side:       sig.Side,
		Strike:     strike,
		EntryTime:  now.Format("15:04"),
		EntryPrice: entry,
		StopLoss:   stop,
		Target1:    t1,
		Target2:    t2,
		Qty:        qty,
		Reason:     append([]string(nil), sig.Reason...),
		Status:     Planned,
		CreatedAt:  now,
	}, nil
}
