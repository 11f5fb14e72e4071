// Package signal standardizes payloads shared between market data, strategy, and planning layers.
package signal

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidInput marks inputs the evaluator or plan builder refuses to process.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks threshold or limit bundles that are missing required fields.
	ErrConfiguration = errors.New("configuration error")
)

// FeatureSet is a single immutable snapshot of market features produced once per tick.
type FeatureSet struct {
	VWAPDist   float64 `json:"vwap_dist" yaml:"vwap_dist"`
	EMA20Slope float64 `json:"ema20_slope" yaml:"ema20_slope"`
	Breadth    float64 `json:"breadth" yaml:"breadth"`
	FII5D      int     `json:"fii_5d" yaml:"fii_5d"`
	FutOIChg   float64 `json:"fut_oi_chg" yaml:"fut_oi_chg"`
	DXYChg     float64 `json:"dxy_chg" yaml:"dxy_chg"`
	USFut      float64 `json:"usfut" yaml:"usfut"`
	IVRank     float64 `json:"iv_rank" yaml:"iv_rank"`
	Sent       float64 `json:"sent" yaml:"sent"`
}

// Validate rejects snapshots carrying NaN or infinite values.
func (f FeatureSet) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"vwap_dist", f.VWAPDist},
		{"ema20_slope", f.EMA20Slope},
		{"breadth", f.Breadth},
		{"fut_oi_chg", f.FutOIChg},
		{"dxy_chg", f.DXYChg},
		{"usfut", f.USFut},
		{"iv_rank", f.IVRank},
		{"sent", f.Sent},
	}
	for _, field := range fields {
		if math.IsNaN(field.v) || math.IsInf(field.v, 0) {
			return fmt.Errorf("%w: feature %s is not finite", ErrInvalidInput, field.name)
		}
	}
	return nil
}

// Snapshot bundles what the driver receives from the market feed on every tick.
type Snapshot struct {
	Spot     float64    `json:"spot"`
	VIX      float64    `json:"vix"`
	Features FeatureSet `json:"features"`
	Ts       time.Time  `json:"ts"`
}

// Side is the directional outcome of an evaluation.
type Side string

const (
	// BuyCall is a long call bias.
	BuyCall Side = "BUY_CALL"
	// BuyPut is a long put bias.
	BuyPut Side = "BUY_PUT"
	// None means no filter bundle matched.
	None Side = "NONE"
)

// Grade ranks signal quality. Only A and C are produced by the rule set today.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Signal expresses a trading bias plus the narrative that justified it.
type Signal struct {
	Side   Side     `json:"side"`
	Grade  Grade    `json:"grade"`
	Reason []string `json:"reason"`
}

// IsActionable reports whether the signal asks for a position.
func (s Signal) IsActionable() bool {
	return s.Side == BuyCall || s.Side == BuyPut
}
