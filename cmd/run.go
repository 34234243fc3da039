package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: scoring, demand forecast, scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runner.New(cfg).RunAll(ctx); err != nil {
			return err
		}

		zap.L().Info("pipeline complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
