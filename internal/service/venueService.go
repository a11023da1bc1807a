package service

import (
	"context"
	"sort"

	"github.com/mathmusci/optivenue/internal/availability"
	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
)

// AvailableVenuesRequest asks which venues could host a booking.
type AvailableVenuesRequest struct {
	StartTime     entity.CustomTime `json:"start_time"`
	DurationHours int               `json:"duration_hours" binding:"required,min=1,max=24"`
	Participants  int               `json:"participants" binding:"required,min=1"`
}

func (r *AvailableVenuesRequest) Validate() error {
	var ve entity.ValidationError
	validateWindow(&ve, r.StartTime, r.DurationHours, r.Participants)
	return ve.Err()
}

// Overview mirrors the admin panel: every event, venue and personnel record.
type Overview struct {
	Events    []*entity.EventWithVenue        `json:"events"`
	Venues    []*entity.VenueWithLocation     `json:"venues"`
	Personnel []*entity.PersonnelAvailability `json:"personnel"`
}

type venueService struct {
	store   database.Store
	checker availability.Checker
}

func NewVenueService(store database.Store, checker availability.Checker) VenueService {
	return &venueService{store: store, checker: checker}
}

// FindAvailableVenues returns, ordered by id, every venue large enough for the
// participants that is open and free for the window and that the personnel
// pool can staff.
func (s *venueService) FindAvailableVenues(ctx context.Context, req *AvailableVenuesRequest) ([]*entity.VenueWithLocation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start, end := availability.Window(entity.WallClock(req.StartTime.Time), req.DurationHours)

	venues, err := s.store.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	loads, err := s.store.ListEventLoads(ctx, start.Add(-maxEventSpan), end)
	if err != nil {
		return nil, err
	}
	pool, err := loadPool(ctx, s.store, start, end)
	if err != nil {
		return nil, err
	}

	// the loads already carry every event that may overlap the window
	booked := make(map[int64][]*entity.Event)
	for _, l := range loads {
		booked[l.VenueID] = append(booked[l.VenueID], &entity.Event{
			ID:            l.EventID,
			VenueID:       l.VenueID,
			StartTime:     entity.CustomTime{Time: l.StartTime},
			DurationHours: l.DurationHours,
		})
	}

	sort.Slice(venues, func(i, j int) bool { return venues[i].ID < venues[j].ID })

	available := make([]*entity.VenueWithLocation, 0, len(venues))
	for _, v := range venues {
		if v.Capacity < req.Participants {
			continue
		}
		if !availability.VenueIsAvailable(v.Venue, booked[v.ID], start, req.DurationHours) {
			continue
		}
		if !s.checker.PersonnelCapacityOK(start, end, v.PersonnelRequired, loads, pool) {
			continue
		}
		available = append(available, v)
	}
	return available, nil
}

func (s *venueService) GetVenue(ctx context.Context, id int64) (*entity.VenueWithLocation, error) {
	return s.store.GetVenue(ctx, id)
}

func (s *venueService) ListVenues(ctx context.Context) ([]*entity.VenueWithLocation, error) {
	return s.store.ListVenues(ctx)
}

func (s *venueService) ListLocations(ctx context.Context) ([]*entity.Location, error) {
	return s.store.ListLocations(ctx)
}

func (s *venueService) ListEvents(ctx context.Context) ([]*entity.EventWithVenue, error) {
	return s.store.ListEvents(ctx)
}

func (s *venueService) ListPersonnel(ctx context.Context) ([]*entity.PersonnelAvailability, error) {
	return s.store.ListPersonnel(ctx)
}

func (s *venueService) Overview(ctx context.Context) (*Overview, error) {
	var (
		o   Overview
		err error
	)
	if o.Events, err = s.store.ListEvents(ctx); err != nil {
		return nil, err
	}
	if o.Venues, err = s.store.ListVenues(ctx); err != nil {
		return nil, err
	}
	if o.Personnel, err = s.store.ListPersonnel(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}
