package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "ai-trader-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.APIAddr != ":8088" {
		t.Fatalf("unexpected App.APIAddr: %s", cfg.App.APIAddr)
	}
	if cfg.Market.SymbolRoot != "BANKNIFTY" || cfg.Market.LotSize != 15 || cfg.Market.StrikeStep != 100 {
		t.Fatalf("unexpected market section: %+v", cfg.Market)
	}
	if cfg.Risk.MaxTradeRisk != 500 || cfg.Risk.MaxOpenPositions != 3 {
		t.Fatalf("unexpected risk section: %+v", cfg.Risk)
	}
	if cfg.Strategy.Mode != "filters_diagnostic" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Strategy.Mode)
	}
	if cfg.Strategy.Thresholds.LongCall[strategy.KeyDXYChg] != 0.15 {
		t.Fatalf("unexpected LONG_CALL dxy threshold: %v", cfg.Strategy.Thresholds.LongCall)
	}
	if cfg.Strategy.Thresholds.LongPut[strategy.KeyVWAPDist] != -0.05 {
		t.Fatalf("unexpected LONG_PUT vwap threshold: %v", cfg.Strategy.Thresholds.LongPut)
	}
	if cfg.Feed.Provider != "replay" || cfg.Feed.Seed != 99 || cfg.Feed.Interval().Milliseconds() != 250 {
		t.Fatalf("unexpected feed section: %+v", cfg.Feed)
	}
	if cfg.Sim.ExecutionDelay().Milliseconds() != 1500 || cfg.Sim.EntryProbability != 1 {
		t.Fatalf("unexpected sim section: %+v", cfg.Sim)
	}

	params := cfg.PlanParams()
	if params.SymbolRoot != "BANKNIFTY" || params.Limits.MaxTradeRisk != 500 {
		t.Fatalf("unexpected plan params: %+v", params)
	}
	session, err := cfg.Session()
	if err != nil {
		t.Fatalf("Session error: %v", err)
	}
	if session.EntryNotBefore != 9*60+30 || session.SquareOff != 15*60 {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestLoadMinimalUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "minimal.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Market.SymbolRoot != "NIFTY" || cfg.Market.LotSize != 50 {
		t.Fatalf("expected NIFTY defaults, got %+v", cfg.Market)
	}
	if cfg.Risk.MaxTradeRisk != 200 {
		t.Fatalf("expected default trade risk, got %.2f", cfg.Risk.MaxTradeRisk)
	}
	if err := cfg.Strategy.Thresholds.Validate(); err != nil {
		t.Fatalf("expected default thresholds, got %v", err)
	}
}

func TestLoadPartialThresholds(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "partial_thresholds.yaml"))
	if !errors.Is(err, signal.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Market.Timezone = "UTC"
	cfg.Risk.MaxTradeRisk = 300
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Risk.MaxTradeRisk != 300 {
		t.Fatalf("expected saved trade risk, got %.2f", loaded.Risk.MaxTradeRisk)
	}
	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"bad provider":   func(c *Config) { c.Feed.Provider = "fax" },
		"bad session":    func(c *Config) { c.Market.EntryNotBefore = "late" },
		"zero lot":       func(c *Config) { c.Market.LotSize = 0 },
		"no root":        func(c *Config) { c.Market.SymbolRoot = "" },
		"probability":    func(c *Config) { c.Sim.EntryProbability = 1.5 },
		"no trade risk":  func(c *Config) { c.Risk.MaxTradeRisk = 0 },
		"missing bundle": func(c *Config) { c.Strategy.Thresholds.LongPut = nil },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.Market.Timezone = "UTC"
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, signal.ErrConfiguration) {
			t.Fatalf("%s: expected ErrConfiguration, got %v", name, err)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("AITRADER_FEED_URL=ws://feed.local/stream\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvFeedProvider, "websocket")
	// registered so cleanup restores it, then cleared so the .env value applies
	t.Setenv(EnvFeedURL, "unset")
	if err := os.Unsetenv(EnvFeedURL); err != nil {
		t.Fatalf("unset: %v", err)
	}

	cfg := Default()
	ApplyEnv(cfg, envFile)
	if cfg.App.LogLevel != "debug" || cfg.Feed.Provider != "websocket" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.App, cfg.Feed)
	}
	if cfg.Feed.URL != "ws://feed.local/stream" {
		t.Fatalf("expected url from .env, got %q", cfg.Feed.URL)
	}
}
