package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const venuesCSV = "Center,Venue A,50,3,09:00,23:00\n" +
	"Center,Venue B,100,4,09:00,23:00\n" +
	"Old Town,Night Club,200,5,22:00,06:00\n"

func booking(t *testing.T, venueID int64, start string, hours, participants int) *BookEventRequest {
	return &BookEventRequest{
		EventType:     entity.EventTypeWedding,
		StartTime:     startAt(t, start),
		DurationHours: hours,
		Participants:  participants,
		VenueID:       venueID,
	}
}

func TestBookEventEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	ctx := context.Background()
	venueA := f.venueID(t, "Venue A")

	event, err := f.bookings.BookEvent(ctx, booking(t, venueA, "2024-05-10T10:00", 2, 20))
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Equal(t, venueA, event.VenueID)
	assert.Equal(t, startAt(t, "2024-05-10T10:00"), event.StartTime)
	assert.Equal(t, bookedAt, event.CreatedAt)

	_, err = f.bookings.BookEvent(ctx, booking(t, venueA, "2024-05-10T10:00", 2, 20))
	assert.ErrorIs(t, err, entity.ErrSchedulingConflict)
	var rejected *entity.BookingRejected
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, entity.ReasonSchedulingConflict, rejected.Reason)

	// touching the existing booking is fine
	_, err = f.bookings.BookEvent(ctx, booking(t, venueA, "2024-05-10T12:00", 2, 20))
	assert.NoError(t, err)

	events, err := f.venues.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestBookEventPersonnelCapacity(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV+"Center,Venue C,50,6,09:00,23:00\n", "2024-05,10\n")
	ctx := context.Background()

	// Venue C keeps 6 of 10 staff busy 09:00-11:00
	_, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue C"), "2024-05-10T09:00", 2, 10))
	require.NoError(t, err)

	// Venue B needs 4 more: exactly the pool
	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue B"), "2024-05-10T10:00", 3, 10))
	require.NoError(t, err)

	// Venue A needs 3 more while 10 are already busy
	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T10:30", 1, 10))
	assert.ErrorIs(t, err, entity.ErrCapacityExceeded)
	assert.NotErrorIs(t, err, entity.ErrMissingAvailabilityRecord)

	// once Venue C's event ended at 11:00 there are 6 free
	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T11:00", 1, 10))
	assert.NoError(t, err)
}

func TestBookEventMissingMonth(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	ctx := context.Background()

	_, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-07-10T10:00", 2, 10))
	assert.ErrorIs(t, err, entity.ErrMissingAvailabilityRecord)
	assert.ErrorIs(t, err, entity.ErrCapacityExceeded)

	// the overnight venue crosses into June, which has no record
	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Night Club"), "2024-05-31T23:00", 2, 10))
	assert.ErrorIs(t, err, entity.ErrMissingAvailabilityRecord)
}

func TestBookEventOpeningHours(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,100\n")
	ctx := context.Background()

	_, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T22:00", 2, 10))
	assert.ErrorIs(t, err, entity.ErrSchedulingConflict)

	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Night Club"), "2024-05-10T23:00", 2, 10))
	assert.NoError(t, err)

	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Night Club"), "2024-05-10T07:00", 2, 10))
	assert.ErrorIs(t, err, entity.ErrSchedulingConflict)
}

func TestBookEventValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	ctx := context.Background()

	_, err := f.bookings.BookEvent(ctx, &BookEventRequest{EventType: "funeral", DurationHours: 25})
	require.ErrorIs(t, err, entity.ErrValidation)
	var ve *entity.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]bool{}
	for _, fe := range ve.Fields {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{
		"event_type": true, "start_time": true, "duration_hours": true, "participants": true, "venue_id": true,
	}, fields)

	_, err = f.bookings.BookEvent(ctx, booking(t, 999, "2024-05-10T10:00", 2, 10))
	assert.ErrorIs(t, err, entity.ErrVenueNotFound)

	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T10:00", 2, 51))
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "participants", ve.Fields[0].Field)

	events, err := f.venues.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBookEventConcurrentRequestsForOneSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	venueA := f.venueID(t, "Venue A")
	req := booking(t, venueA, "2024-05-10T10:00", 2, 20)

	var succeeded, conflicts atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			r := *req
			_, err := f.bookings.BookEvent(ctx, &r)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, entity.ErrSchedulingConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, 15, conflicts.Load())
}
