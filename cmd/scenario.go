package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/runner"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Simulate policy scenarios against the demand baseline",
	Long:  "Applies each configured scenario's interventions to an independent copy of the demand forecast and writes per-scenario GeoJSON plus the comparison table. Missing upstream outputs are materialized first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runner.New(cfg).RunStage(ctx, "scenarios"); err != nil {
			return err
		}

		zap.L().Info("scenario outputs written",
			zap.String("dir", cfg.Paths.ScenarioOutputDir),
			zap.String("comparison", cfg.Paths.ScenarioComparisonCSV),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
