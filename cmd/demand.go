package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/runner"
)

var demandCmd = &cobra.Command{
	Use:   "demand",
	Short: "Forecast baseline and target-year electricity demand",
	Long:  "Consumes the scored cluster dataset and estimates household counts, baseline demand and peak load, then compounds population and consumption growth to the configured target year. Runs the scoring stage first when its output is missing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runner.New(cfg).RunStage(ctx, "demand"); err != nil {
			return err
		}

		zap.L().Info("demand outputs written",
			zap.String("geojson", cfg.Paths.DemandOutputGeoJSON),
			zap.String("summary", cfg.Paths.SummaryStatsJSON),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demandCmd)
}
