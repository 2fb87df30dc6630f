package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lonestar-outdoor/boardmap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "boardmap",
	Short: "Billboard inventory directory",
	Long:  "Imports static and digital billboard inventory from GeoJSON and vendor feeds into a relational store, and serves the filtered map/list query API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
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
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
