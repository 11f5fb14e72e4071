package strategy

import (
	"fmt"
	"sort"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

// Feature keys accepted inside a threshold bundle.
const (
	KeyVWAPDist   = "vwap_dist"
	KeyEMA20Slope = "ema20_slope"
	KeyBreadth    = "breadth"
	KeyFII5D      = "fii_5d"
	KeyFutOIChg   = "fut_oi_chg"
	KeyUSFut      = "usfut"
	KeyDXYChg     = "dxy_chg"
)

// Keys each bundle must carry, in display order.
var (
	CallKeys = []string{KeyVWAPDist, KeyEMA20Slope, KeyBreadth, KeyFII5D, KeyFutOIChg, KeyUSFut, KeyDXYChg}
	PutKeys  = []string{KeyVWAPDist, KeyEMA20Slope, KeyBreadth, KeyFII5D, KeyFutOIChg, KeyUSFut}
)

// Bundle maps feature names to the value they are compared against.
type Bundle map[string]float64

// Thresholds holds the two named comparison bundles used by the rule filters.
type Thresholds struct {
	LongCall Bundle `yaml:"long_call" json:"LONG_CALL"`
	LongPut  Bundle `yaml:"long_put" json:"LONG_PUT"`
}

// DefaultThresholds returns the stock NIFTY intraday filter values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LongCall: Bundle{
			KeyVWAPDist:   0,
			KeyEMA20Slope: 0,
			KeyBreadth:    1.2,
			KeyFII5D:      0,
			KeyFutOIChg:   0,
			KeyUSFut:      -0.3,
			KeyDXYChg:     0.2,
		},
		LongPut: Bundle{
			KeyVWAPDist:   0,
			KeyEMA20Slope: 0,
			KeyBreadth:    0.9,
			KeyFII5D:      0,
			KeyFutOIChg:   0,
			KeyUSFut:      0,
		},
	}
}

// Validate ensures both bundles carry every comparison field the rules read.
func (t Thresholds) Validate() error {
	if err := t.LongCall.require("LONG_CALL", CallKeys); err != nil {
		return err
	}
	return t.LongPut.require("LONG_PUT", PutKeys)
}

func (b Bundle) require(name string, keys []string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := b[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s bundle missing %v", signal.ErrConfiguration, name, missing)
}
