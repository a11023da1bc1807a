package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mathmusci/optivenue/internal/entity"
)

const venueColumns = `v.id, v.name, v.capacity, v.personnel_required, v.location_id, v.open_time, v.close_time, l.name`

func (s *Store) CreateVenue(ctx context.Context, venue *entity.Venue) error {
	query := `
		INSERT INTO venues (name, capacity, personnel_required, location_id, open_time, close_time)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query),
		venue.Name,
		venue.Capacity,
		venue.PersonnelRequired,
		venue.LocationID,
		venue.OpenTime,
		venue.CloseTime,
	).Scan(&venue.ID)
	if err != nil {
		return fmt.Errorf("create venue %q: %w", venue.Name, err)
	}
	return nil
}

func (s *Store) GetVenue(ctx context.Context, id int64) (*entity.VenueWithLocation, error) {
	query := `
		SELECT ` + venueColumns + `
		FROM venues v
		JOIN locations l ON l.id = v.location_id
		WHERE v.id = ?
	`

	venue, err := scanVenue(s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get venue %d: %w", id, err)
	}
	return venue, nil
}

func (s *Store) ListVenues(ctx context.Context) ([]*entity.VenueWithLocation, error) {
	query := `
		SELECT ` + venueColumns + `
		FROM venues v
		JOIN locations l ON l.id = v.location_id
		ORDER BY v.name, v.id
	`

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	venues := []*entity.VenueWithLocation{}
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	return venues, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVenue(row scanner) (*entity.VenueWithLocation, error) {
	var venue entity.VenueWithLocation
	err := row.Scan(
		&venue.ID,
		&venue.Name,
		&venue.Capacity,
		&venue.PersonnelRequired,
		&venue.LocationID,
		&venue.OpenTime,
		&venue.CloseTime,
		&venue.LocationName,
	)
	if err != nil {
		return nil, err
	}
	return &venue, nil
}
