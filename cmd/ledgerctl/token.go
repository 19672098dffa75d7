package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/wallet-ledger/internal/integration/adapters"
)

func tokenCmd() *cobra.Command {
	var (
		userFlag string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			cfg := loadConfig()
			tokens := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

			token, err := tokens.GenerateAccessToken(cmd.Context(), userID, email)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user ID (required)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
