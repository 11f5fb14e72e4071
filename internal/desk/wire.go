package desk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/config"
	"github.com/maheshnellore19-collab/AI-Trader/internal/execution"
	"github.com/maheshnellore19-collab/AI-Trader/internal/market"
	"github.com/maheshnellore19-collab/AI-Trader/internal/paper"
	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/risk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

// FromConfig assembles a controller quoting synthetic premiums.
func FromConfig(cfg *config.Config, log zerolog.Logger, clock func() time.Time) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	session, err := cfg.Session()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	quotes := market.NewSyntheticPremiums(cfg.Feed.Seed, cfg.Sim.PremiumMin, cfg.Sim.PremiumMax)
	strat := strategy.Build(cfg.Strategy.Mode, strategy.Params{Thresholds: cfg.Strategy.Thresholds})
	log.Info().Str("strategy", strat.Name()).Str("root", cfg.Market.SymbolRoot).Msg("desk configured")

	return New(Options{
		Strategy: strat,
		Builder:  plan.NewBuilder(cfg.PlanParams(), quotes, clock),
		Gate:     risk.Gate{Limits: cfg.Limits(), Session: session},
		Account:  paper.NewAccount(cfg.Risk.DailyCapital),
		Ledger:   paper.NewLedger(cfg.Sim.HistoryLimit),
		Executor: execution.NewExecutor(log).WithClock(clock),
		Sim: Sim{
			ExecutionDelay:   cfg.Sim.ExecutionDelay(),
			EntryProbability: cfg.Sim.EntryProbability,
			ExitProbability:  cfg.Sim.ExitProbability,
			PnLNoise:         cfg.Sim.PnLNoise,
		},
		Log:   log,
		Clock: clock,
		Seed:  cfg.Feed.Seed,
	})
}

// FeedFromConfig builds the configured snapshot feed. The returned close func
// flushes the recorder, if one was configured.
func FeedFromConfig(cfg *config.Config, log zerolog.Logger) (*market.Feed, func() error, error) {
	opts := []market.Option{
		market.WithInterval(cfg.Feed.Interval()),
		market.WithGenerator(market.NewGenerator(cfg.Feed.Seed, cfg.Feed.StartSpot)),
		market.WithReplayPath(cfg.Feed.ReplayPath),
		market.WithURL(cfg.Feed.URL),
	}
	closer := func() error { return nil }
	if cfg.Feed.RecordPath != "" {
		recorder, err := market.NewJSONLRecorder(cfg.Feed.RecordPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open recorder: %w", err)
		}
		opts = append(opts, market.WithRecorder(recorder))
		closer = recorder.Close
	}
	return market.NewFeed(cfg.Feed.Provider, log, opts...), closer, nil
}
