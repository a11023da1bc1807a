package service

import (
	"context"
	"io"

	"github.com/mathmusci/optivenue/internal/entity"
)

// BookingService creates events after checking the venue and the personnel pool.
type BookingService interface {
	BookEvent(ctx context.Context, req *BookEventRequest) (*entity.Event, error)
}

// VenueService answers availability queries and serves listings.
type VenueService interface {
	FindAvailableVenues(ctx context.Context, req *AvailableVenuesRequest) ([]*entity.VenueWithLocation, error)
	GetVenue(ctx context.Context, id int64) (*entity.VenueWithLocation, error)
	ListVenues(ctx context.Context) ([]*entity.VenueWithLocation, error)
	ListLocations(ctx context.Context) ([]*entity.Location, error)
	ListEvents(ctx context.Context) ([]*entity.EventWithVenue, error)
	ListPersonnel(ctx context.Context) ([]*entity.PersonnelAvailability, error)
	Overview(ctx context.Context) (*Overview, error)
}

// ImportService loads CSV files into the store, one transaction per file.
type ImportService interface {
	ImportVenues(ctx context.Context, r io.Reader) (*ImportSummary, error)
	ImportPersonnel(ctx context.Context, r io.Reader) (*ImportSummary, error)
}

// CalendarService renders booked events as iCalendar.
type CalendarService interface {
	WriteCalendar(ctx context.Context, w io.Writer) error
}
