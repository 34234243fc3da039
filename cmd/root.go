package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "energymap",
	Short: "Electrification planning pipeline",
	Long:  "Ranks settlement clusters by electrification need, forecasts demand, and simulates policy scenarios over georeferenced cluster data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the JSON config document (default energymap_config.json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
