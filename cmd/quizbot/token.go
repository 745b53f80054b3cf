package main

import (
	"fmt"
	"time"

	"quizbot/internal/service"

	"github.com/spf13/cobra"
)

func tokenCmd(c *cli) *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := service.NewAuthService(c.cfg.JWT)
			if err != nil {
				return err
			}
			token, err := auth.CreateJWT(cmd.Context(), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: jwt.access_ttl)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
