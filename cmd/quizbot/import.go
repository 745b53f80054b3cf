package main

import (
	"encoding/json"
	"fmt"
	"os"

	"quizbot/internal/repository"
	"quizbot/internal/service"

	"github.com/spf13/cobra"
)

func importCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load categories and questions into the question bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := openMigrated(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewImportService(
				repository.NewQuestionDatabaseAdapter(db),
				repository.NewCategoryDatabaseAdapter(db),
				repository.NewTransactionManagerAdapter(db),
			)
			report, err := svc.Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
