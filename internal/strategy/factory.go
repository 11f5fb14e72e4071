package strategy

import (
	"strings"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

// Strategy defines behaviour shared by evaluators the driver can plug in.
type Strategy interface {
	Evaluate(f signal.FeatureSet) (signal.Signal, error)
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	Thresholds Thresholds
}

// RuleFilter evaluates snapshots against a fixed threshold configuration.
type RuleFilter struct {
	thresholds Thresholds
	diagnostic bool
}

// NewRuleFilter builds the filter strategy; diagnostic switches to per-predicate reasons.
func NewRuleFilter(t Thresholds, diagnostic bool) *RuleFilter {
	return &RuleFilter{thresholds: t, diagnostic: diagnostic}
}

// Name returns the identifier for logging.
func (r *RuleFilter) Name() string {
	if r.diagnostic {
		return "RuleFilterDiagnostic"
	}
	return "RuleFilter"
}

// Evaluate runs the filters over a snapshot.
func (r *RuleFilter) Evaluate(f signal.FeatureSet) (signal.Signal, error) {
	return evaluate(f, r.thresholds, r.diagnostic)
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "filters_diagnostic", "diagnostic":
		return NewRuleFilter(params.Thresholds, true)
	default:
		return NewRuleFilter(params.Thresholds, false)
	}
}
