package main

import (
	"context"
	"fmt"
	"os"

	"quizbot/internal/config"
	"quizbot/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs after the root pre-run.
type cli struct {
	configPath string
	cfg        *config.Config
}

func rootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "quizbot",
		Short:         "Conversational quiz sessions with scoring, history and PDF reports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config.yaml (default: ./config.yaml or ./config/config.yaml)")

	serve := serveCmd(c)
	root.AddCommand(serve, migrateCmd(c), importCmd(c), tokenCmd(c))
	root.RunE = serve.RunE
	return root
}
