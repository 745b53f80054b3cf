package main

import (
	"quizbot/internal/logger"

	"github.com/spf13/cobra"
)

func migrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Get().Info("Migrations applied")
			return nil
		},
	}
}
