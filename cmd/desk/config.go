package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maheshnellore19-collab/AI-Trader/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var out string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(out, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&out, "out", "o", "config.yaml", "Destination file")
	cmd.AddCommand(initCmd)
	return cmd
}
