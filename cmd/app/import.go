package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/service"
	"github.com/spf13/cobra"
)

type importFunc func(ctx context.Context, r io.Reader) (*service.ImportSummary, error)

func (c *cli) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV file into the store",
	}

	cmd.AddCommand(
		c.importFileCmd("venues", "Import venues (location_name, venue_name, capacity, personnel_required, open_time, close_time)",
			func(s service.ImportService) importFunc { return s.ImportVenues }),
		c.importFileCmd("personnel", "Import monthly personnel availability (month, available_personnel)",
			func(s service.ImportService) importFunc { return s.ImportPersonnel }),
	)
	return cmd
}

func (c *cli) importFileCmd(use, short string, pick func(service.ImportService) importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file.csv>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store database.Store) error {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
				summary, err := importFile(ctx, args[0], pick(service.NewImportService(store)))
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), args[0], summary)
				return nil
			})
		},
	}
}

func importFile(ctx context.Context, path string, fn importFunc) (*service.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fn(ctx, f)
}

func printSummary(w io.Writer, path string, s *service.ImportSummary) {
	fmt.Fprintf(w, "%s: %d rows, %d locations, %d venues, %d personnel records\n",
		path, s.Rows, s.LocationsCreated, s.VenuesCreated, s.PersonnelCreated)
}
