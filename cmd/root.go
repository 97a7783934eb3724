package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "intake-api",
	Short: "Mortgage intake API",
	Long:  "Serves the public site's lead and pre-approval forms, processes uploaded financial documents, and aggregates the Vault ledger for the loan-officer console.",
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
