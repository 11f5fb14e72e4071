// Package market produces the driver's market snapshots and option premium quotes.
package market

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

const (
	defaultStartSpot = 24350.0
	defaultStartVIX  = 14.0
	spotStep         = 10.0
)

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Generator synthesizes feature snapshots inside the ranges the rule set was tuned for.
// Trend features oscillate with the wall clock; flow and global features are noise.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	spot float64
	vix  float64
}

// NewGenerator seeds a generator. A zero seed picks one from the clock.
func NewGenerator(seed int64, startSpot float64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if startSpot <= 0 {
		startSpot = defaultStartSpot
	}
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		spot: startSpot,
		vix:  defaultStartVIX,
	}
}

func (g *Generator) features(ts time.Time) signal.FeatureSet {
	phase := float64(ts.UnixMilli()) / 10000
	r := g.rng.Float64
	return signal.FeatureSet{
		VWAPDist:   roundTo(math.Sin(phase)*0.5, 2),
		EMA20Slope: roundTo(math.Cos(phase)*0.2, 2),
		Breadth:    roundTo(1.0+math.Sin(phase*0.5)*0.5, 2),
		FII5D:      int(math.Floor(r()*1000 - 400)),
		FutOIChg:   roundTo(r()*4-2, 1),
		DXYChg:     roundTo(r()*0.4-0.2, 2),
		USFut:      roundTo(r()*1.0-0.4, 1),
		IVRank:     roundTo(r(), 2),
		Sent:       roundTo(r()*0.4-0.2, 1),
	}
}

// Next advances spot and VIX by one step and returns a full snapshot.
func (g *Generator) Next(ts time.Time) signal.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.spot = roundTo(g.spot+(g.rng.Float64()-0.5)*spotStep, 2)
	g.vix = math.Min(35, math.Max(9, g.vix+(g.rng.Float64()-0.5)*0.4))
	return signal.Snapshot{
		Spot:     g.spot,
		VIX:      roundTo(g.vix, 2),
		Features: g.features(ts),
		Ts:       ts,
	}
}

// SyntheticPremiums quotes uniformly distributed premiums in [lo, hi).
type SyntheticPremiums struct {
	mu  sync.Mutex
	rng *rand.Rand
	lo  float64
	hi  float64
}

// NewSyntheticPremiums builds a seedable quote source; a zero range defaults to 100..150.
func NewSyntheticPremiums(seed int64, lo, hi float64) *SyntheticPremiums {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if hi <= lo {
		lo, hi = 100, 150
	}
	return &SyntheticPremiums{rng: rand.New(rand.NewSource(seed)), lo: lo, hi: hi}
}

// Premium implements plan.PremiumSource.
func (s *SyntheticPremiums) Premium(_ string, _ int64, _ plan.OptionType) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return roundTo(s.lo+s.rng.Float64()*(s.hi-s.lo), 2), nil
}
