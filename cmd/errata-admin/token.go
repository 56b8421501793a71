package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/errata-app/errata-api/internal/service/identity"
)

func newTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}

	tokenCmd.AddCommand(newTokenMintCommand())

	return tokenCmd
}

func newTokenMintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mint <user-id>",
		Short: "Mint a signed access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tokens, err := identity.NewTokenService(cfg.Auth)
			if err != nil {
				return err
			}

			token, err := tokens.GenerateToken(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to mint token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
