// desk runs the paper options desk: signal evaluation, trade planning and the read API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maheshnellore19-collab/AI-Trader/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

var (
	configPath string
	logLevel   string
	envFiles   []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "desk",
		Short: "Paper options desk for index weeklies",
		Long: `desk evaluates market snapshots against the LONG_CALL / LONG_PUT filter
bundles, turns actionable signals into sized trade plans and simulates their
execution on a paper account.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override app.log_level")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Extra .env files to load (default .env)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies .env and environment overrides, then
// the command-line log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, envFiles...)
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
