package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides honoured by ApplyEnv.
const (
	EnvLogLevel     = "AITRADER_LOG_LEVEL"
	EnvFeedProvider = "AITRADER_FEED_PROVIDER"
	EnvFeedURL      = "AITRADER_FEED_URL"
	EnvAPIAddr      = "AITRADER_API_ADDR"
	EnvMetricsAddr  = "AITRADER_METRICS_ADDR"
)

// ApplyEnv loads .env files best-effort and lets environment variables override
// listener addresses, log level and feed selection.
func ApplyEnv(cfg *Config, files ...string) {
	_ = godotenv.Load(files...)
	override := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(EnvLogLevel, &cfg.App.LogLevel)
	override(EnvFeedProvider, &cfg.Feed.Provider)
	override(EnvFeedURL, &cfg.Feed.URL)
	override(EnvAPIAddr, &cfg.App.APIAddr)
	override(EnvMetricsAddr, &cfg.App.MetricsAddr)
}
