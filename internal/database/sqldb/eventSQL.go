package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/mathmusci/optivenue/internal/entity"
)

func (s *Store) CreateEvent(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (event_type, start_time, duration_hours, participants, venue_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(query),
		string(event.EventType),
		event.StartTime,
		event.DurationHours,
		event.Participants,
		event.VenueID,
		event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *Store) ListEventsByVenue(ctx context.Context, venueID int64, from, to time.Time) ([]*entity.Event, error) {
	query := `
		SELECT id, event_type, start_time, duration_hours, participants, venue_id, created_at
		FROM events
		WHERE venue_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time, id
	`

	rows, err := s.q(ctx).QueryContext(ctx, s.dialect.rebind(query), venueID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list events of venue %d: %w", venueID, err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var (
			event     entity.Event
			eventType string
		)
		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.StartTime,
			&event.DurationHours,
			&event.Participants,
			&event.VenueID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		event.EventType = entity.EventType(eventType)
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (s *Store) ListEventLoads(ctx context.Context, from, to time.Time) ([]entity.EventLoad, error) {
	query := `
		SELECT e.id, e.venue_id, e.start_time, e.duration_hours, v.personnel_required
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		WHERE e.start_time >= ? AND e.start_time < ?
		ORDER BY e.start_time, e.id
	`

	rows, err := s.q(ctx).QueryContext(ctx, s.dialect.rebind(query), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list event loads: %w", err)
	}
	defer rows.Close()

	var loads []entity.EventLoad
	for rows.Next() {
		var load entity.EventLoad
		err := rows.Scan(
			&load.EventID,
			&load.VenueID,
			&load.StartTime,
			&load.DurationHours,
			&load.PersonnelRequired,
		)
		if err != nil {
			return nil, err
		}
		load.StartTime = load.StartTime.UTC()
		loads = append(loads, load)
	}
	return loads, rows.Err()
}

func (s *Store) ListEvents(ctx context.Context) ([]*entity.EventWithVenue, error) {
	query := `
		SELECT e.id, e.event_type, e.start_time, e.duration_hours, e.participants, e.venue_id, e.created_at, v.name
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		ORDER BY e.start_time, v.name, e.id
	`

	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []*entity.EventWithVenue{}
	for rows.Next() {
		var (
			event     entity.EventWithVenue
			eventType string
		)
		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.StartTime,
			&event.DurationHours,
			&event.Participants,
			&event.VenueID,
			&event.CreatedAt,
			&event.VenueName,
		)
		if err != nil {
			return nil, err
		}
		event.EventType = entity.EventType(eventType)
		events = append(events, &event)
	}
	return events, rows.Err()
}
