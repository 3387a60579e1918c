package main

import (
	"fmt"
	"strconv"

	"tourii_backend/internal/seed"
	"tourii_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.Logger().Info("schema applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog and demo user",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := seed.Load()
			if err != nil {
				return err
			}

			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if migrate {
				if err := repo.Migrate(cmd.Context()); err != nil {
					return err
				}
			}

			return seed.Apply(cmd.Context(), repo, catalog)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before seeding")
	return cmd
}

func newGrantAdminCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "grant-admin <user_id>",
		Short: "Give a registered user access to the admin API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.SetUserAdmin(cmd.Context(), userID, !revoke); err != nil {
				return fmt.Errorf("failed to update user %d: %w", userID, err)
			}

			logger.Logger().Info("admin flag updated",
				zap.Int64("user_id", userID),
				zap.Bool("is_admin", !revoke))
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin access instead")
	return cmd
}
