// Package memory is an in-process database.Store. Rows live in append-only
// slices, so rolling a transaction back truncates them to where it began.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
)

var errNoTx = errors.New("booking lock requires a transaction")

type txKey struct{}

type state struct {
	locations []entity.Location
	venues    []entity.Venue
	events    []entity.Event
	personnel []entity.PersonnelAvailability
	nextID    int64
}

// mark records the slice lengths at the start of a transaction.
type mark struct {
	locations, venues, events, personnel int
	nextID                               int64
}

type Store struct {
	mu sync.RWMutex
	state

	// eventsByVenue indexes events by venue id, in insertion order.
	eventsByVenue map[int64][]int
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{eventsByVenue: map[int64][]int{}}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// read runs fn under the read lock unless ctx already holds the store.
func (s *Store) read(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := mark{
		locations: len(s.locations),
		venues:    len(s.venues),
		events:    len(s.events),
		personnel: len(s.personnel),
		nextID:    s.nextID,
	}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(m)
			panic(p)
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.rollback(m)
		return err
	}
	return nil
}

func (s *Store) rollback(m mark) {
	s.locations = s.locations[:m.locations]
	s.venues = s.venues[:m.venues]
	s.events = s.events[:m.events]
	s.personnel = s.personnel[:m.personnel]
	s.nextID = m.nextID
	s.reindex()
}

func (s *Store) reindex() {
	s.eventsByVenue = make(map[int64][]int, len(s.venues))
	for i, e := range s.events {
		s.eventsByVenue[e.VenueID] = append(s.eventsByVenue[e.VenueID], i)
	}
}

// LockBookings is satisfied by the transaction itself, which holds the store
// exclusively.
func (s *Store) LockBookings(ctx context.Context) error {
	if !s.inTx(ctx) {
		return errNoTx
	}
	return nil
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Reset(ctx context.Context) error {
	s.write(ctx, func() {
		s.state = state{}
		s.reindex()
	})
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateLocation(ctx context.Context, location *entity.Location) error {
	s.write(ctx, func() {
		location.ID = s.id()
		s.locations = append(s.locations, *location)
	})
	return nil
}

func (s *Store) GetLocationByName(ctx context.Context, name string) (*entity.Location, error) {
	var found *entity.Location
	s.read(ctx, func() {
		for i := range s.locations {
			if s.locations[i].Name == name {
				l := s.locations[i]
				found = &l
				return
			}
		}
	})
	if found == nil {
		return nil, entity.ErrLocationNotFound
	}
	return found, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]*entity.Location, error) {
	out := []*entity.Location{}
	s.read(ctx, func() {
		for _, l := range s.locations {
			out = append(out, &l)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) locationName(id int64) (string, bool) {
	for _, l := range s.locations {
		if l.ID == id {
			return l.Name, true
		}
	}
	return "", false
}

func (s *Store) CreateVenue(ctx context.Context, venue *entity.Venue) error {
	var err error
	s.write(ctx, func() {
		if _, ok := s.locationName(venue.LocationID); !ok {
			err = entity.ErrLocationNotFound
			return
		}
		venue.ID = s.id()
		s.venues = append(s.venues, *venue)
	})
	return err
}

func (s *Store) venue(id int64) (*entity.VenueWithLocation, bool) {
	for _, v := range s.venues {
		if v.ID == id {
			name, _ := s.locationName(v.LocationID)
			return &entity.VenueWithLocation{Venue: v, LocationName: name}, true
		}
	}
	return nil, false
}

func (s *Store) GetVenue(ctx context.Context, id int64) (*entity.VenueWithLocation, error) {
	var (
		v  *entity.VenueWithLocation
		ok bool
	)
	s.read(ctx, func() {
		v, ok = s.venue(id)
	})
	if !ok {
		return nil, entity.ErrVenueNotFound
	}
	return v, nil
}

func (s *Store) ListVenues(ctx context.Context) ([]*entity.VenueWithLocation, error) {
	out := []*entity.VenueWithLocation{}
	s.read(ctx, func() {
		for _, v := range s.venues {
			name, _ := s.locationName(v.LocationID)
			out = append(out, &entity.VenueWithLocation{Venue: v, LocationName: name})
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *entity.Event) error {
	var err error
	s.write(ctx, func() {
		if _, ok := s.venue(event.VenueID); !ok {
			err = entity.ErrVenueNotFound
			return
		}
		event.ID = s.id()
		event.StartTime.Time = entity.WallClock(event.StartTime.Time)
		s.events = append(s.events, *event)
		s.eventsByVenue[event.VenueID] = append(s.eventsByVenue[event.VenueID], len(s.events)-1)
	})
	return err
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func byStart[T any](items []T, start func(T) time.Time, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := start(items[i]), start(items[j])
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return id(items[i]) < id(items[j])
	})
}

func (s *Store) ListEventsByVenue(ctx context.Context, venueID int64, from, to time.Time) ([]*entity.Event, error) {
	var out []*entity.Event
	s.read(ctx, func() {
		for _, i := range s.eventsByVenue[venueID] {
			e := s.events[i]
			if inRange(e.StartTime.Time, from, to) {
				out = append(out, &e)
			}
		}
	})
	byStart(out,
		func(e *entity.Event) time.Time { return e.StartTime.Time },
		func(e *entity.Event) int64 { return e.ID })
	return out, nil
}

func (s *Store) ListEventLoads(ctx context.Context, from, to time.Time) ([]entity.EventLoad, error) {
	var out []entity.EventLoad
	s.read(ctx, func() {
		for _, e := range s.events {
			if !inRange(e.StartTime.Time, from, to) {
				continue
			}
			v, _ := s.venue(e.VenueID)
			out = append(out, entity.EventLoad{
				EventID:           e.ID,
				VenueID:           e.VenueID,
				StartTime:         e.StartTime.Time,
				DurationHours:     e.DurationHours,
				PersonnelRequired: v.PersonnelRequired,
			})
		}
	})
	byStart(out,
		func(l entity.EventLoad) time.Time { return l.StartTime },
		func(l entity.EventLoad) int64 { return l.EventID })
	return out, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]*entity.EventWithVenue, error) {
	out := []*entity.EventWithVenue{}
	s.read(ctx, func() {
		for _, e := range s.events {
			v, _ := s.venue(e.VenueID)
			out = append(out, &entity.EventWithVenue{Event: e, VenueName: v.Name})
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StartTime.Equal(b.StartTime.Time) {
			return a.StartTime.Before(b.StartTime.Time)
		}
		if c := strings.Compare(a.VenueName, b.VenueName); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) CreatePersonnel(ctx context.Context, record *entity.PersonnelAvailability) error {
	s.write(ctx, func() {
		record.ID = s.id()
		s.personnel = append(s.personnel, *record)
	})
	return nil
}

func (s *Store) GetPersonnelByMonth(ctx context.Context, month string) (*entity.PersonnelAvailability, error) {
	var found *entity.PersonnelAvailability
	s.read(ctx, func() {
		for i := range s.personnel {
			if s.personnel[i].Month == month {
				r := s.personnel[i]
				found = &r
				return
			}
		}
	})
	if found == nil {
		return nil, entity.ErrPersonnelMissing
	}
	return found, nil
}

func (s *Store) ListPersonnel(ctx context.Context) ([]*entity.PersonnelAvailability, error) {
	out := []*entity.PersonnelAvailability{}
	s.read(ctx, func() {
		for _, r := range s.personnel {
			out = append(out, &r)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out, nil
}
