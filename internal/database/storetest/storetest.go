// Package storetest holds the behavior every database.Store must show. Driver
// packages run it from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It is called once per subtest.
type Factory func(t *testing.T) database.Store

func at(day, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
}

func wall(day, hour int) entity.CustomTime {
	return entity.CustomTime{Time: at(day, hour)}
}

// SeedVenue creates a location named locationName and a venue in it.
func SeedVenue(t *testing.T, ctx context.Context, store database.Store, locationName, venueName string, personnel int) *entity.Venue {
	t.Helper()
	location, err := store.GetLocationByName(ctx, locationName)
	if errors.Is(err, entity.ErrNotFound) {
		location = &entity.Location{Name: locationName}
		require.NoError(t, store.CreateLocation(ctx, location))
	} else {
		require.NoError(t, err)
	}

	venue := &entity.Venue{
		Name:              venueName,
		Capacity:          50,
		PersonnelRequired: personnel,
		LocationID:        location.ID,
		OpenTime:          entity.DefaultOpenTime,
		CloseTime:         entity.DefaultCloseTime,
	}
	require.NoError(t, store.CreateVenue(ctx, venue))
	return venue
}

func Run(t *testing.T, newStore Factory) {
	t.Run("locations", func(t *testing.T) { testLocations(t, newStore(t)) })
	t.Run("venues", func(t *testing.T) { testVenues(t, newStore(t)) })
	t.Run("events", func(t *testing.T) { testEvents(t, newStore(t)) })
	t.Run("personnel", func(t *testing.T) { testPersonnel(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("transaction panic", func(t *testing.T) { testTransactionPanic(t, newStore(t)) })
	t.Run("reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func testLocations(t *testing.T, store database.Store) {
	ctx := context.Background()

	_, err := store.GetLocationByName(ctx, "Chisinau")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	first := &entity.Location{Name: "Chisinau"}
	second := &entity.Location{Name: "Chisinau"}
	other := &entity.Location{Name: "Balti"}
	require.NoError(t, store.CreateLocation(ctx, first))
	require.NoError(t, store.CreateLocation(ctx, second))
	require.NoError(t, store.CreateLocation(ctx, other))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	got, err := store.GetLocationByName(ctx, "Chisinau")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = store.GetLocationByName(ctx, "chisinau")
	assert.ErrorIs(t, err, entity.ErrLocationNotFound, "names match case-sensitively")

	all, err := store.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Balti", all[0].Name)
}

func testVenues(t *testing.T, store database.Store) {
	ctx := context.Background()

	_, err := store.GetVenue(ctx, 404)
	assert.ErrorIs(t, err, entity.ErrVenueNotFound)

	location := &entity.Location{Name: "Old Town"}
	require.NoError(t, store.CreateLocation(ctx, location))

	night := &entity.Venue{
		Name:              "Night Club",
		Capacity:          120,
		PersonnelRequired: 6,
		LocationID:        location.ID,
		OpenTime:          entity.MustTimeOfDay("22:00"),
		CloseTime:         entity.MustTimeOfDay("06:00"),
	}
	require.NoError(t, store.CreateVenue(ctx, night))
	SeedVenue(t, ctx, store, "Old Town", "Garden", 2)

	got, err := store.GetVenue(ctx, night.ID)
	require.NoError(t, err)
	assert.Equal(t, *night, got.Venue)
	assert.Equal(t, "Old Town", got.LocationName)
	assert.True(t, got.Overnight())

	venues, err := store.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "Garden", venues[0].Name)
	assert.Equal(t, "Night Club", venues[1].Name)
}

func testEvents(t *testing.T, store database.Store) {
	ctx := context.Background()
	hall := SeedVenue(t, ctx, store, "Center", "Hall", 3)
	terrace := SeedVenue(t, ctx, store, "Center", "Terrace", 2)

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("EEST", 3*3600))
	events := []*entity.Event{
		{EventType: entity.EventTypeWedding, StartTime: wall(10, 10), DurationHours: 2, Participants: 20, VenueID: hall.ID, CreatedAt: createdAt},
		{EventType: entity.EventTypeBirthday, StartTime: wall(10, 10), DurationHours: 3, Participants: 10, VenueID: terrace.ID, CreatedAt: createdAt},
		{EventType: entity.EventTypeCorporate, StartTime: wall(9, 20), DurationHours: 24, Participants: 5, VenueID: hall.ID, CreatedAt: createdAt},
		{EventType: entity.EventTypePrivate, StartTime: wall(12, 9), DurationHours: 1, Participants: 5, VenueID: hall.ID, CreatedAt: createdAt},
	}
	for _, e := range events {
		require.NoError(t, store.CreateEvent(ctx, e))
		assert.NotZero(t, e.ID)
	}

	byVenue, err := store.ListEventsByVenue(ctx, hall.ID, at(9, 12), at(11, 0))
	require.NoError(t, err)
	require.Len(t, byVenue, 2)
	assert.Equal(t, events[2].ID, byVenue[0].ID)
	assert.Equal(t, events[0].ID, byVenue[1].ID)
	assert.Equal(t, wall(10, 10), byVenue[1].StartTime)
	assert.Equal(t, entity.EventTypeWedding, byVenue[1].EventType)
	assert.True(t, createdAt.Equal(byVenue[1].CreatedAt))

	loads, err := store.ListEventLoads(ctx, at(9, 12), at(11, 0))
	require.NoError(t, err)
	require.Len(t, loads, 3)
	assert.Equal(t, entity.EventLoad{
		EventID: events[2].ID, VenueID: hall.ID, StartTime: at(9, 20), DurationHours: 24, PersonnelRequired: 3,
	}, loads[0])
	personnel := map[int64]int{}
	for _, l := range loads[1:] {
		personnel[l.VenueID] = l.PersonnelRequired
	}
	assert.Equal(t, map[int64]int{hall.ID: 3, terrace.ID: 2}, personnel)

	loads, err = store.ListEventLoads(ctx, at(10, 10), at(10, 10))
	require.NoError(t, err)
	assert.Empty(t, loads, "empty range")

	all, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, events[2].ID, all[0].ID)
	assert.Equal(t, "Hall", all[1].VenueName)
	assert.Equal(t, "Terrace", all[2].VenueName)
	assert.Equal(t, events[3].ID, all[3].ID)
}

func testPersonnel(t *testing.T, store database.Store) {
	ctx := context.Background()

	_, err := store.GetPersonnelByMonth(ctx, "2024-05")
	assert.ErrorIs(t, err, entity.ErrPersonnelMissing)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	records := []*entity.PersonnelAvailability{
		{Month: "2024-06", AvailablePersonnel: 8},
		{Month: "2024-05", AvailablePersonnel: 10},
		{Month: "2024-05", AvailablePersonnel: 99},
	}
	for _, r := range records {
		require.NoError(t, store.CreatePersonnel(ctx, r))
	}

	got, err := store.GetPersonnelByMonth(ctx, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, records[1].ID, got.ID)
	assert.Equal(t, 10, got.AvailablePersonnel)

	all, err := store.ListPersonnel(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2024-05", "2024-05", "2024-06"}, []string{all[0].Month, all[1].Month, all[2].Month})
	assert.Equal(t, records[1].ID, all[0].ID)
}

func testTransactions(t *testing.T, store database.Store) {
	ctx := context.Background()

	assert.Error(t, store.LockBookings(ctx), "lock outside a transaction")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.LockBookings(ctx))
		require.NoError(t, store.CreateLocation(ctx, &entity.Location{Name: "Rolled back"}))
		return store.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, store.CreatePersonnel(ctx, &entity.PersonnelAvailability{Month: "2024-05", AvailablePersonnel: 1}))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetLocationByName(ctx, "Rolled back")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = store.GetPersonnelByMonth(ctx, "2024-05")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = store.WithTx(ctx, func(ctx context.Context) error {
		if err := store.CreateLocation(ctx, &entity.Location{Name: "Kept"}); err != nil {
			return err
		}
		// reads inside the transaction see its writes
		_, err := store.GetLocationByName(ctx, "Kept")
		return err
	})
	require.NoError(t, err)

	_, err = store.GetLocationByName(ctx, "Kept")
	assert.NoError(t, err)
}

func testTransactionPanic(t *testing.T, store database.Store) {
	ctx := context.Background()

	assert.PanicsWithValue(t, "boom", func() {
		_ = store.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, store.CreateLocation(ctx, &entity.Location{Name: "Rolled back"}))
			panic("boom")
		})
	})

	locations, err := store.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)

	// the store is released and writable again
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context) error {
		return store.CreateLocation(ctx, &entity.Location{Name: "Kept"})
	}))
	locations, err = store.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Kept", locations[0].Name)
}

func testReset(t *testing.T, store database.Store) {
	ctx := context.Background()
	venue := SeedVenue(t, ctx, store, "Center", "Hall", 1)
	require.NoError(t, store.CreatePersonnel(ctx, &entity.PersonnelAvailability{Month: "2024-05", AvailablePersonnel: 1}))
	require.NoError(t, store.CreateEvent(ctx, &entity.Event{
		EventType: entity.EventTypeWedding, StartTime: wall(10, 10), DurationHours: 1, Participants: 1, VenueID: venue.ID, CreatedAt: at(1, 0),
	}))

	require.NoError(t, store.Reset(ctx))

	venues, err := store.ListVenues(ctx)
	require.NoError(t, err)
	assert.Empty(t, venues)
	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	personnel, err := store.ListPersonnel(ctx)
	require.NoError(t, err)
	assert.Empty(t, personnel)
	locations, err := store.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)

	require.NoError(t, store.Migrate(ctx), "migrate is idempotent")
}
