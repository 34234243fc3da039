package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/runner"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute priority scores and recommended solutions per cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runner.New(cfg).RunStage(ctx, "scoring"); err != nil {
			return err
		}

		zap.L().Info("scoring outputs written",
			zap.String("geojson", cfg.Paths.ScoringOutputGeoJSON),
			zap.String("csv", cfg.Paths.ScoringOutputCSV),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
