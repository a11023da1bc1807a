package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mathmusci/optivenue/internal/entity"
)

func (s *Store) CreateLocation(ctx context.Context, location *entity.Location) error {
	query := `INSERT INTO locations (name) VALUES (?) RETURNING id`

	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query), location.Name).Scan(&location.ID)
	if err != nil {
		return fmt.Errorf("create location %q: %w", location.Name, err)
	}
	return nil
}

func (s *Store) GetLocationByName(ctx context.Context, name string) (*entity.Location, error) {
	query := `SELECT id, name FROM locations WHERE name = ? ORDER BY id LIMIT 1`

	var location entity.Location
	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query), name).Scan(&location.ID, &location.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location %q: %w", name, err)
	}
	return &location, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]*entity.Location, error) {
	query := `SELECT id, name FROM locations ORDER BY name, id`

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := []*entity.Location{}
	for rows.Next() {
		var location entity.Location
		if err := rows.Scan(&location.ID, &location.Name); err != nil {
			return nil, err
		}
		locations = append(locations, &location)
	}
	return locations, rows.Err()
}
