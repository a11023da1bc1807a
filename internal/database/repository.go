// Package database defines the persistence contract of the scheduler. The sqldb
// and memory packages implement it.
package database

import (
	"context"
	"time"

	"github.com/mathmusci/optivenue/internal/entity"
)

type LocationRepository interface {
	CreateLocation(ctx context.Context, location *entity.Location) error
	// GetLocationByName matches the name exactly. When several locations share
	// it the lowest id is returned.
	GetLocationByName(ctx context.Context, name string) (*entity.Location, error)
	ListLocations(ctx context.Context) ([]*entity.Location, error)
}

type VenueRepository interface {
	CreateVenue(ctx context.Context, venue *entity.Venue) error
	GetVenue(ctx context.Context, id int64) (*entity.VenueWithLocation, error)
	// ListVenues orders by name, then id.
	ListVenues(ctx context.Context) ([]*entity.VenueWithLocation, error)
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *entity.Event) error
	// ListEventsByVenue returns the events of a venue starting in [from, to).
	ListEventsByVenue(ctx context.Context, venueID int64, from, to time.Time) ([]*entity.Event, error)
	// ListEventLoads returns every event starting in [from, to) joined with the
	// personnel requirement of its venue, ordered by start time.
	ListEventLoads(ctx context.Context, from, to time.Time) ([]entity.EventLoad, error)
	// ListEvents orders by start time, then venue name.
	ListEvents(ctx context.Context) ([]*entity.EventWithVenue, error)
}

type PersonnelRepository interface {
	CreatePersonnel(ctx context.Context, record *entity.PersonnelAvailability) error
	// GetPersonnelByMonth returns the lowest-id record of month or
	// entity.ErrPersonnelMissing.
	GetPersonnelByMonth(ctx context.Context, month string) (*entity.PersonnelAvailability, error)
	// ListPersonnel orders by month, then id.
	ListPersonnel(ctx context.Context) ([]*entity.PersonnelAvailability, error)
}

// Store is the whole persistence contract.
type Store interface {
	LocationRepository
	VenueRepository
	EventRepository
	PersonnelRepository

	// WithTx runs fn in one transaction carried by the context it receives.
	// Nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockBookings serializes booking decisions until the surrounding
	// transaction ends. It must be called inside WithTx.
	LockBookings(ctx context.Context) error

	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error
	// Reset drops every table and recreates the schema.
	Reset(ctx context.Context) error
	Close() error
}

// BookingsLockID keys the PostgreSQL advisory lock taken by LockBookings.
const BookingsLockID int64 = 53102024
