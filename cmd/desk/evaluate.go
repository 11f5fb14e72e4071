package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
	"github.com/maheshnellore19-collab/AI-Trader/internal/strategy"
)

type evaluation struct {
	Signal signal.Signal   `json:"signal"`
	Plan   *plan.TradePlan `json:"plan,omitempty"`
}

func evaluateCmd() *cobra.Command {
	var (
		featuresPath string
		spot         float64
		premium      float64
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one feature set (JSON) and optionally build its trade plan",
		Long: `Reads a feature set as JSON from --features or stdin and prints the signal.
When --spot and --premium are both given, the trade plan for an actionable
signal is printed as well. Giving only one of them is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (spot > 0) != (premium > 0) {
				return fmt.Errorf("%w: --spot and --premium must be given together", signal.ErrInvalidInput)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if featuresPath != "" && featuresPath != "-" {
				file, err := os.Open(featuresPath)
				if err != nil {
					return fmt.Errorf("open features: %w", err)
				}
				defer file.Close()
				in = file
			}
			var features signal.FeatureSet
			if err := json.NewDecoder(in).Decode(&features); err != nil {
				return fmt.Errorf("%w: decode features: %v", signal.ErrInvalidInput, err)
			}

			strat := strategy.Build(cfg.Strategy.Mode, strategy.Params{Thresholds: cfg.Strategy.Thresholds})
			sig, err := strat.Evaluate(features)
			if err != nil {
				return err
			}
			out := evaluation{Signal: sig}
			if spot > 0 && premium > 0 {
				out.Plan, err = plan.Build(sig, spot, premium, cfg.PlanParams(), time.Now())
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&featuresPath, "features", "f", "", "Feature set JSON file (default stdin)")
	cmd.Flags().Float64Var(&spot, "spot", 0, "Index spot for plan building")
	cmd.Flags().Float64Var(&premium, "premium", 0, "ATM option premium for plan building")
	return cmd
}
