package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(venues []*entity.VenueWithLocation) []string {
	out := make([]string, 0, len(venues))
	for _, v := range venues {
		out = append(out, v.Name)
	}
	return out
}

func TestFindAvailableVenues(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	ctx := context.Background()

	req := &AvailableVenuesRequest{StartTime: startAt(t, "2024-05-10T10:00"), DurationHours: 2, Participants: 20}
	venues, err := f.venues.FindAvailableVenues(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Venue A", "Venue B"}, names(venues), "night club is closed")

	_, err = f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T11:00", 2, 20))
	require.NoError(t, err)

	// Venue A is taken; Venue B brings the staff at 11:00 to 7 of 10
	venues, err = f.venues.FindAvailableVenues(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Venue B"}, names(venues))

	req.Participants = 150
	venues, err = f.venues.FindAvailableVenues(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestFindAvailableVenuesPersonnel(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,6\n")
	ctx := context.Background()

	_, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T10:00", 4, 20))
	require.NoError(t, err)

	// 3 staff left at noon and Venue B needs 4
	venues, err := f.venues.FindAvailableVenues(ctx, &AvailableVenuesRequest{
		StartTime: startAt(t, "2024-05-10T12:00"), DurationHours: 1, Participants: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, venues)

	venues, err = f.venues.FindAvailableVenues(ctx, &AvailableVenuesRequest{
		StartTime: startAt(t, "2024-05-10T22:00"), DurationHours: 1, Participants: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Venue A", "Venue B", "Night Club"}, names(venues), "the day event ended at 14:00")

	venues, err = f.venues.FindAvailableVenues(ctx, &AvailableVenuesRequest{
		StartTime: startAt(t, "2024-08-10T12:00"), DurationHours: 1, Participants: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, venues, "no personnel record for August")
}

func TestFindAvailableVenuesValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.venues.FindAvailableVenues(context.Background(), &AvailableVenuesRequest{DurationHours: 0, Participants: 0})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-06,3\n2024-05,10\n")
	ctx := context.Background()

	_, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue B"), "2024-05-10T10:00", 2, 20))
	require.NoError(t, err)

	o, err := f.venues.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, o.Events, 1)
	assert.Equal(t, "Venue B", o.Events[0].VenueName)
	assert.Equal(t, []string{"Night Club", "Venue A", "Venue B"}, names(o.Venues))
	require.Len(t, o.Personnel, 2)
	assert.Equal(t, "2024-05", o.Personnel[0].Month)
}

func TestWriteCalendar(t *testing.T) {
	f := newFixture(t)
	f.seed(t, venuesCSV, "2024-05,10\n")
	ctx := context.Background()

	event, err := f.bookings.BookEvent(ctx, booking(t, f.venueID(t, "Venue A"), "2024-05-10T10:00", 2, 20))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.calendar.WriteCalendar(ctx, &buf))
	assert.Contains(t, buf.String(), "DTSTART:20240510T100000")
	assert.Contains(t, buf.String(), "DTEND:20240510T120000")

	cal, err := ics.ParseCalendar(&buf)
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, fmt.Sprintf("event-%d@test.local", event.ID), events[0].Id())
	assert.Equal(t, "Venue A", events[0].GetProperty(ics.ComponentPropertyLocation).Value)
	assert.Equal(t, "Wedding (20 guests)", events[0].GetProperty(ics.ComponentPropertySummary).Value)
}
