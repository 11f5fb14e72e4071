// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maheshnellore19-collab/AI-Trader/internal/market"
	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/risk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

// App captures process-wide runtime settings such as name, environment, listeners, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	APIAddr     string `yaml:"api_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Market describes the traded index and its option contract conventions.
type Market struct {
	SymbolRoot     string `yaml:"symbol_root"`
	Expiry         string `yaml:"expiry"`
	LotSize        int    `yaml:"lot_size"`
	StrikeStep     int    `yaml:"strike_step"`
	EntryNotBefore string `yaml:"entry_not_before"`
	SquareOffTime  string `yaml:"square_off_time"`
	Timezone       string `yaml:"timezone"`
}

// Risk encodes guard-rails for how much size the desk may take on.
type Risk struct {
	DailyCapital      float64 `yaml:"daily_capital"`
	MaxDayLoss        float64 `yaml:"max_day_loss"`
	MaxTradeRisk      float64 `yaml:"max_trade_risk"`
	MaxOpenPositions  int     `yaml:"max_open_positions"`
	DisableOnVIXAbove float64 `yaml:"disable_on_vix_above"`
}

// Strategy specifies which evaluator is active along with its thresholds.
type Strategy struct {
	Mode       string              `yaml:"mode"`
	Thresholds strategy.Thresholds `yaml:"thresholds"`
}

// Feed selects the market snapshot provider.
type Feed struct {
	Provider   string  `yaml:"provider"`
	IntervalMs int     `yaml:"interval_ms"`
	Seed       int64   `yaml:"seed"`
	StartSpot  float64 `yaml:"start_spot"`
	ReplayPath string  `yaml:"replay_path"`
	URL        string  `yaml:"url"`
	RecordPath string  `yaml:"record_path"`
}

// Sim tunes the driver's execution and exit simulation.
type Sim struct {
	ExecutionDelayMs int     `yaml:"execution_delay_ms"`
	EntryProbability float64 `yaml:"entry_probability"`
	ExitProbability  float64 `yaml:"exit_probability"`
	PnLNoise         float64 `yaml:"pnl_noise"`
	PremiumMin       float64 `yaml:"premium_min"`
	PremiumMax       float64 `yaml:"premium_max"`
	HistoryLimit     int     `yaml:"history_limit"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Market   Market   `yaml:"market"`
	Risk     Risk     `yaml:"risk"`
	Strategy Strategy `yaml:"strategy"`
	Feed     Feed     `yaml:"feed"`
	Sim      Sim      `yaml:"sim"`
}

// Default returns the stock NIFTY desk configuration.
func Default() *Config {
	return &Config{
		App: App{
			Name:        "ai-trader",
			Env:         "dev",
			MetricsAddr: ":9102",
			APIAddr:     ":8080",
			LogLevel:    "info",
		},
		Market: Market{
			SymbolRoot:     "NIFTY",
			Expiry:         plan.DefaultExpiry,
			LotSize:        plan.DefaultLotSize,
			StrikeStep:     plan.DefaultStrikeStep,
			EntryNotBefore: "09:25",
			SquareOffTime:  "15:15",
			Timezone:       "Asia/Kolkata",
		},
		Risk: Risk{
			DailyCapital:      20000,
			MaxDayLoss:        400,
			MaxTradeRisk:      200,
			MaxOpenPositions:  2,
			DisableOnVIXAbove: 22,
		},
		Strategy: Strategy{
			Mode:       "filters",
			Thresholds: strategy.DefaultThresholds(),
		},
		Feed: Feed{
			Provider:   market.ProviderSynthetic,
			IntervalMs: 1000,
			StartSpot:  24350,
		},
		Sim: Sim{
			ExecutionDelayMs: 2000,
			EntryProbability: 0.3,
			ExitProbability:  0.02,
			PnLNoise:         5,
			PremiumMin:       100,
			PremiumMax:       150,
			HistoryLimit:     200,
		},
	}
}

// Load reads a YAML file from disk over the defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	// partial bundles must fail validation instead of inheriting default keys
	config.Strategy.Thresholds = strategy.Thresholds{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if config.Strategy.Thresholds.LongCall == nil && config.Strategy.Thresholds.LongPut == nil {
		config.Strategy.Thresholds = strategy.DefaultThresholds()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate surfaces configuration mistakes before the driver starts.
func (c *Config) Validate() error {
	if err := c.Strategy.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Market.SymbolRoot == "" {
		return fmt.Errorf("%w: market.symbol_root is empty", signal.ErrConfiguration)
	}
	if c.Market.LotSize <= 0 || c.Market.StrikeStep <= 0 {
		return fmt.Errorf("%w: lot_size and strike_step must be positive", signal.ErrConfiguration)
	}
	if _, err := c.Session(); err != nil {
		return fmt.Errorf("%w: %v", signal.ErrConfiguration, err)
	}
	if c.Risk.MaxTradeRisk <= 0 {
		return fmt.Errorf("%w: risk.max_trade_risk must be positive", signal.ErrConfiguration)
	}
	if !market.ValidProvider(c.Feed.Provider) {
		return fmt.Errorf("%w: unknown feed provider %q", signal.ErrConfiguration, c.Feed.Provider)
	}
	for name, p := range map[string]float64{"entry_probability": c.Sim.EntryProbability, "exit_probability": c.Sim.ExitProbability} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: sim.%s %.2f outside [0,1]", signal.ErrConfiguration, name, p)
		}
	}
	return nil
}

// Limits converts the risk section into the sizing type.
func (c *Config) Limits() risk.Limits {
	return risk.Limits{
		DailyCapital:      c.Risk.DailyCapital,
		MaxDayLoss:        c.Risk.MaxDayLoss,
		MaxTradeRisk:      c.Risk.MaxTradeRisk,
		MaxOpenPositions:  c.Risk.MaxOpenPositions,
		DisableOnVIXAbove: c.Risk.DisableOnVIXAbove,
	}
}

// Session parses the entry window.
func (c *Config) Session() (risk.Session, error) {
	return risk.NewSession(c.Market.EntryNotBefore, c.Market.SquareOffTime, c.Market.Timezone)
}

// PlanParams returns builder parameters for the configured market.
func (c *Config) PlanParams() plan.Params {
	return plan.Params{
		SymbolRoot: c.Market.SymbolRoot,
		Expiry:     c.Market.Expiry,
		LotSize:    c.Market.LotSize,
		StrikeStep: c.Market.StrikeStep,
		Limits:     c.Limits(),
	}
}

// Interval returns the feed cadence.
func (f Feed) Interval() time.Duration {
	return time.Duration(f.IntervalMs) * time.Millisecond
}

// ExecutionDelay returns how long a plan stays PLANNED before it fills.
func (s Sim) ExecutionDelay() time.Duration {
	return time.Duration(s.ExecutionDelayMs) * time.Millisecond
}
