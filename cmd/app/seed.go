package main

import (
	"context"
	"errors"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/service"
	"github.com/spf13/cobra"
)

func (c *cli) seedCmd() *cobra.Command {
	var (
		venues    string
		personnel string
		reset     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load venues and personnel availability, optionally from a fresh schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if venues == "" && personnel == "" {
				return errors.New("nothing to seed: pass --venues and/or --personnel")
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, store database.Store) error {
				prepare := store.Migrate
				if reset {
					prepare = store.Reset
				}
				if err := prepare(ctx); err != nil {
					return err
				}

				imports := service.NewImportService(store)
				if venues != "" {
					summary, err := importFile(ctx, venues, imports.ImportVenues)
					if err != nil {
						return err
					}
					printSummary(cmd.OutOrStdout(), venues, summary)
				}
				if personnel != "" {
					summary, err := importFile(ctx, personnel, imports.ImportPersonnel)
					if err != nil {
						return err
					}
					printSummary(cmd.OutOrStdout(), personnel, summary)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&venues, "venues", "", "venues CSV file")
	cmd.Flags().StringVar(&personnel, "personnel", "", "personnel availability CSV file")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate the schema first")
	return cmd
}
