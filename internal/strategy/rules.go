// Package strategy turns feature snapshots into directional option signals.
package strategy

import (
	"fmt"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

var (
	callReasons = []string{
		"Above VWAP & EMA20 rising",
		"Breadth strong",
		"FII flows positive or OI supp",
		"Global cues not adverse",
	}
	putReasons = []string{
		"Below VWAP & EMA20 falling",
		"Breadth weak",
		"FII flows negative",
		"Global risk-off",
	}
	noneReason = "Filters not met"
)

type predicate struct {
	label string
	ok    bool
}

func allPass(preds []predicate) bool {
	for _, p := range preds {
		if !p.ok {
			return false
		}
	}
	return true
}

func passed(prefix string, preds []predicate) []string {
	var out []string
	for _, p := range preds {
		if p.ok {
			out = append(out, prefix+p.label)
		}
	}
	return out
}

func callPredicates(f signal.FeatureSet, b Bundle) []predicate {
	return []predicate{
		{fmt.Sprintf("vwap_dist %.2f > %.2f", f.VWAPDist, b[KeyVWAPDist]), f.VWAPDist > b[KeyVWAPDist]},
		{fmt.Sprintf("ema20_slope %.2f > %.2f", f.EMA20Slope, b[KeyEMA20Slope]), f.EMA20Slope > b[KeyEMA20Slope]},
		{fmt.Sprintf("breadth %.2f > %.2f", f.Breadth, b[KeyBreadth]), f.Breadth > b[KeyBreadth]},
		{
			fmt.Sprintf("fii_5d %d > %.0f or fut_oi_chg %.2f > %.2f", f.FII5D, b[KeyFII5D], f.FutOIChg, b[KeyFutOIChg]),
			float64(f.FII5D) > b[KeyFII5D] || f.FutOIChg > b[KeyFutOIChg],
		},
		{fmt.Sprintf("usfut %.2f > %.2f", f.USFut, b[KeyUSFut]), f.USFut > b[KeyUSFut]},
		{fmt.Sprintf("dxy_chg %.2f <= %.2f", f.DXYChg, b[KeyDXYChg]), f.DXYChg <= b[KeyDXYChg]},
	}
}

func putPredicates(f signal.FeatureSet, b Bundle) []predicate {
	return []predicate{
		{fmt.Sprintf("vwap_dist %.2f < %.2f", f.VWAPDist, b[KeyVWAPDist]), f.VWAPDist < b[KeyVWAPDist]},
		{fmt.Sprintf("ema20_slope %.2f < %.2f", f.EMA20Slope, b[KeyEMA20Slope]), f.EMA20Slope < b[KeyEMA20Slope]},
		{fmt.Sprintf("breadth %.2f < %.2f", f.Breadth, b[KeyBreadth]), f.Breadth < b[KeyBreadth]},
		{
			fmt.Sprintf("fii_5d %d < %.0f or fut_oi_chg %.2f < %.2f", f.FII5D, b[KeyFII5D], f.FutOIChg, b[KeyFutOIChg]),
			float64(f.FII5D) < b[KeyFII5D] || f.FutOIChg < b[KeyFutOIChg],
		},
		{fmt.Sprintf("usfut %.2f < %.2f", f.USFut, b[KeyUSFut]), f.USFut < b[KeyUSFut]},
	}
}

// Evaluate applies the LONG_CALL then LONG_PUT filter bundles; the first full match wins.
// Matched signals are always grade A with a fixed narrative.
func Evaluate(f signal.FeatureSet, t Thresholds) (signal.Signal, error) {
	return evaluate(f, t, false)
}

// EvaluateDiagnostic behaves like Evaluate but reports the individual predicates that passed.
func EvaluateDiagnostic(f signal.FeatureSet, t Thresholds) (signal.Signal, error) {
	return evaluate(f, t, true)
}

func evaluate(f signal.FeatureSet, t Thresholds, diagnostic bool) (signal.Signal, error) {
	if err := f.Validate(); err != nil {
		return signal.Signal{}, err
	}
	if err := t.Validate(); err != nil {
		return signal.Signal{}, err
	}

	call := callPredicates(f, t.LongCall)
	if allPass(call) {
		reason := append([]string(nil), callReasons...)
		if diagnostic {
			reason = passed("", call)
		}
		return signal.Signal{Side: signal.BuyCall, Grade: signal.GradeA, Reason: reason}, nil
	}

	put := putPredicates(f, t.LongPut)
	if allPass(put) {
		reason := append([]string(nil), putReasons...)
		if diagnostic {
			reason = passed("", put)
		}
		return signal.Signal{Side: signal.BuyPut, Grade: signal.GradeA, Reason: reason}, nil
	}

	reason := []string{noneReason}
	if diagnostic {
		reason = append(reason, passed("call: ", call)...)
		reason = append(reason, passed("put: ", put)...)
	}
	return signal.Signal{Side: signal.None, Grade: signal.GradeC, Reason: reason}, nil
}
