package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maheshnellore19-collab/AI-Trader/internal/api"
	"github.com/maheshnellore19-collab/AI-Trader/internal/desk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/metrics"
	sig "github.com/maheshnellore19-collab/AI-Trader/internal/signal"
	"github.com/maheshnellore19-collab/AI-Trader/internal/util"
)

func runCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the feed, the desk loop and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Feed.Provider = provider
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			log := util.LoggerFor(cfg.App.Env, cfg.App.LogLevel)

			ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if cfg.App.MetricsAddr != "" {
				srv := metrics.Serve(cfg.App.MetricsAddr)
				defer srv.Close()
				log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
			}

			ctrl, err := desk.FromConfig(cfg, log, nil)
			if err != nil {
				return err
			}
			feed, closeFeed, err := desk.FeedFromConfig(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFeed(); err != nil {
					log.Warn().Err(err).Msg("close recorder")
				}
			}()

			snapshots := make(chan sig.Snapshot, 64)
			go func() {
				defer close(snapshots)
				if err := feed.Run(ctx, snapshots); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("feed stopped")
					cancel()
				}
			}()

			if cfg.App.APIAddr != "" {
				server := api.NewServer(ctrl, log)
				go func() {
					if err := server.Run(ctx, cfg.App.APIAddr); err != nil {
						log.Error().Err(err).Msg("api stopped")
						cancel()
					}
				}()
			}

			log.Info().Str("provider", feed.Provider()).Msg("desk started")
			err = ctrl.Run(ctx, snapshots)
			state := ctrl.State()
			log.Info().
				Int("ticks", state.Ticks).
				Int("closed_plans", len(ctrl.History())).
				Float64("day_pnl", state.DayPnL).
				Msg("shutting down")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Override feed.provider (synthetic, replay, websocket)")
	return cmd
}
