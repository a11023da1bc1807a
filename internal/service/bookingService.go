package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mathmusci/optivenue/internal/availability"
	"github.com/mathmusci/optivenue/internal/clock"
	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/mathmusci/optivenue/internal/lock"
	"github.com/sirupsen/logrus"
)

// maxEventSpan bounds how far back an event can start and still be running.
const maxEventSpan = entity.MaxDurationHours * time.Hour

// BookEventRequest is the input of a booking.
type BookEventRequest struct {
	EventType     entity.EventType  `json:"event_type" binding:"required"`
	StartTime     entity.CustomTime `json:"start_time"`
	DurationHours int               `json:"duration_hours" binding:"required,min=1,max=24"`
	Participants  int               `json:"participants" binding:"required,min=1"`
	VenueID       int64             `json:"venue_id" binding:"required,gt=0"`
}

// Validate reports every invalid field at once.
func (r *BookEventRequest) Validate() error {
	var ve entity.ValidationError
	if !r.EventType.Valid() {
		ve.Add("event_type", "must be one of %v", entity.EventTypes)
	}
	validateWindow(&ve, r.StartTime, r.DurationHours, r.Participants)
	if r.VenueID <= 0 {
		ve.Add("venue_id", "must be a positive id")
	}
	return ve.Err()
}

func validateWindow(ve *entity.ValidationError, start entity.CustomTime, durationHours, participants int) {
	if start.IsZero() {
		ve.Add("start_time", "is required in %s format", entity.CustomTimeLayout)
	}
	if durationHours < entity.MinDurationHours || durationHours > entity.MaxDurationHours {
		ve.Add("duration_hours", "must be between %d and %d", entity.MinDurationHours, entity.MaxDurationHours)
	}
	if participants < 1 {
		ve.Add("participants", "must be at least 1")
	}
}

type bookingService struct {
	store    database.Store
	locker   lock.Locker
	checker  availability.Checker
	clock    clock.Clock
	lockWait time.Duration
}

// NewBookingService creates a new instance of BookingService. lockWait bounds
// how long a request queues for the booking lock; zero waits for the request
// context only.
func NewBookingService(
	store database.Store,
	locker lock.Locker,
	checker availability.Checker,
	clk clock.Clock,
	lockWait time.Duration,
) BookingService {
	return &bookingService{
		store:    store,
		locker:   locker,
		checker:  checker,
		clock:    clk,
		lockWait: lockWait,
	}
}

func (s *bookingService) BookEvent(ctx context.Context, req *BookEventRequest) (*entity.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start, end := availability.Window(entity.WallClock(req.StartTime.Time), req.DurationHours)
	log := logrus.WithFields(logrus.Fields{
		"venue_id":   req.VenueID,
		"start_time": req.StartTime.String(),
		"duration":   req.DurationHours,
	})

	var event *entity.Event
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.LockBookings(ctx); err != nil {
			return err
		}

		venue, err := s.store.GetVenue(ctx, req.VenueID)
		if err != nil {
			return err
		}
		if req.Participants > venue.Capacity {
			var ve entity.ValidationError
			ve.Add("participants", "%s holds at most %d participants", venue.Name, venue.Capacity)
			return ve.Err()
		}

		booked, err := s.store.ListEventsByVenue(ctx, venue.ID, start.Add(-maxEventSpan), end)
		if err != nil {
			return err
		}
		if v := availability.VenueAvailability(venue.Venue, booked, start, req.DurationHours); !v.OK {
			return &entity.BookingRejected{Reason: entity.ReasonSchedulingConflict, Detail: v.Detail}
		}

		loads, err := s.store.ListEventLoads(ctx, start.Add(-maxEventSpan), end)
		if err != nil {
			return err
		}
		pool, err := loadPool(ctx, s.store, start, end)
		if err != nil {
			return err
		}
		if v := s.checker.PersonnelCapacity(start, end, venue.PersonnelRequired, loads, pool); !v.OK {
			reason := entity.ReasonCapacityExceeded
			if v.Reason == availability.ReasonMissingRecord {
				reason = entity.ReasonMissingAvailabilityRecord
			}
			return &entity.BookingRejected{Reason: reason, Detail: v.Detail}
		}

		event = &entity.Event{
			EventType:     req.EventType,
			StartTime:     entity.CustomTime{Time: start},
			DurationHours: req.DurationHours,
			Participants:  req.Participants,
			VenueID:       venue.ID,
			CreatedAt:     s.clock.Now(),
		}
		return s.store.CreateEvent(ctx, event)
	})
	if err != nil {
		if isRejection(err) {
			log.WithError(err).Info("Booking rejected")
		} else {
			log.WithError(err).Error("Booking failed")
		}
		return nil, err
	}

	log.WithField("event_id", event.ID).Info("Event booked")
	return event, nil
}

func (s *bookingService) lock(ctx context.Context) (func(), error) {
	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}
	release, err := s.locker.Lock(lockCtx)
	if err != nil {
		return nil, fmt.Errorf("book event: %w", err)
	}
	return release, nil
}

// loadPool fetches the personnel record of every month [start, end) touches.
// Months without a record are left out for the checker to reject.
func loadPool(ctx context.Context, repo database.PersonnelRepository, start, end time.Time) (availability.PoolIndex, error) {
	var records []*entity.PersonnelAvailability
	for _, month := range entity.MonthsBetween(start, end) {
		record, err := repo.GetPersonnelByMonth(ctx, month)
		if errors.Is(err, entity.ErrPersonnelMissing) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return availability.NewPool(records), nil
}

// isRejection tells a refused request apart from an infrastructure failure.
func isRejection(err error) bool {
	return errors.Is(err, entity.ErrValidation) ||
		errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrSchedulingConflict) ||
		errors.Is(err, entity.ErrCapacityExceeded)
}
