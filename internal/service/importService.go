package service

import (
	"context"
	"errors"
	"io"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/mathmusci/optivenue/internal/importer"
	"github.com/sirupsen/logrus"
)

// ImportSummary counts what one file added to the store.
type ImportSummary struct {
	Rows             int `json:"rows"`
	LocationsCreated int `json:"locations_created"`
	VenuesCreated    int `json:"venues_created"`
	PersonnelCreated int `json:"personnel_created"`
}

type importService struct {
	store database.Store
}

func NewImportService(store database.Store) ImportService {
	return &importService{store: store}
}

// ImportVenues creates one venue per row. Locations are matched by exact name
// and created on first use. Nothing is written when any row is invalid.
func (s *importService) ImportVenues(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rows, err := importer.ParseVenues(r)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{Rows: len(rows)}
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		summary.LocationsCreated, summary.VenuesCreated = 0, 0
		locations := map[string]int64{}

		for _, row := range rows {
			locationID, ok := locations[row.LocationName]
			if !ok {
				location, err := s.store.GetLocationByName(ctx, row.LocationName)
				switch {
				case errors.Is(err, entity.ErrNotFound):
					location = &entity.Location{Name: row.LocationName}
					if err := s.store.CreateLocation(ctx, location); err != nil {
						return &entity.ImportError{Line: row.Line, Field: importer.ColLocationName, Err: err}
					}
					summary.LocationsCreated++
				case err != nil:
					return err
				}
				locationID = location.ID
				locations[row.LocationName] = locationID
			}

			if err := s.store.CreateVenue(ctx, row.Venue(locationID)); err != nil {
				return &entity.ImportError{Line: row.Line, Err: err}
			}
			summary.VenuesCreated++
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("Venue import failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"rows":      summary.Rows,
		"locations": summary.LocationsCreated,
		"venues":    summary.VenuesCreated,
	}).Info("Venues imported")
	return summary, nil
}

// ImportPersonnel creates one availability record per row, duplicates
// included. Nothing is written when any row is invalid.
func (s *importService) ImportPersonnel(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rows, err := importer.ParsePersonnel(r)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{Rows: len(rows)}
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		summary.PersonnelCreated = 0
		for _, row := range rows {
			if err := s.store.CreatePersonnel(ctx, row.Record()); err != nil {
				return &entity.ImportError{Line: row.Line, Err: err}
			}
			summary.PersonnelCreated++
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("Personnel import failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"rows":      summary.Rows,
		"personnel": summary.PersonnelCreated,
	}).Info("Personnel availability imported")
	return summary, nil
}
