package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mathmusci/optivenue/internal/entity"
)

func (s *Store) CreatePersonnel(ctx context.Context, record *entity.PersonnelAvailability) error {
	query := `INSERT INTO personnel_availability (month, available_personnel) VALUES (?, ?) RETURNING id`

	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query), record.Month, record.AvailablePersonnel).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("create personnel availability for %s: %w", record.Month, err)
	}
	return nil
}

func (s *Store) GetPersonnelByMonth(ctx context.Context, month string) (*entity.PersonnelAvailability, error) {
	query := `
		SELECT id, month, available_personnel
		FROM personnel_availability
		WHERE month = ?
		ORDER BY id
		LIMIT 1
	`

	var record entity.PersonnelAvailability
	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query), month).Scan(&record.ID, &record.Month, &record.AvailablePersonnel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPersonnelMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get personnel availability for %s: %w", month, err)
	}
	record.Month = strings.TrimSpace(record.Month)
	return &record, nil
}

func (s *Store) ListPersonnel(ctx context.Context) ([]*entity.PersonnelAvailability, error) {
	query := `SELECT id, month, available_personnel FROM personnel_availability ORDER BY month, id`

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list personnel availability: %w", err)
	}
	defer rows.Close()

	records := []*entity.PersonnelAvailability{}
	for rows.Next() {
		var record entity.PersonnelAvailability
		if err := rows.Scan(&record.ID, &record.Month, &record.AvailablePersonnel); err != nil {
			return nil, err
		}
		record.Month = strings.TrimSpace(record.Month)
		records = append(records, &record)
	}
	return records, rows.Err()
}
