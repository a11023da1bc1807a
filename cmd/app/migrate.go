package main

import (
	"context"
	"fmt"

	"github.com/mathmusci/optivenue/internal/appServer"
	"github.com/mathmusci/optivenue/internal/database"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store database.Store) error {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *cli) withStore(ctx context.Context, fn func(ctx context.Context, store database.Store) error) error {
	store, err := appServer.OpenStore(ctx, &c.cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
