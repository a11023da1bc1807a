package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/mathmusci/optivenue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVenues(t *testing.T) {
	input := "\ufefflocation_name,venue_name,capacity,personnel_required,open_time,close_time\n" +
		"Chisinau Center, Grand Hall ,150,6,10:00,23:30\n" +
		"Chisinau Center,Garden,80,3,,\n" +
		"Old Town,Night Club,200.0,8,22:00,06:00\n"

	rows, err := ParseVenues(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, VenueRow{
		Line:              2,
		LocationName:      "Chisinau Center",
		VenueName:         "Grand Hall",
		Capacity:          150,
		PersonnelRequired: 6,
		OpenTime:          entity.MustTimeOfDay("10:00"),
		CloseTime:         entity.MustTimeOfDay("23:30"),
	}, rows[0])

	assert.Equal(t, entity.DefaultOpenTime, rows[1].OpenTime)
	assert.Equal(t, entity.DefaultCloseTime, rows[1].CloseTime)

	assert.Equal(t, 200, rows[2].Capacity)
	assert.True(t, rows[2].Venue(7).Overnight())
	assert.Equal(t, int64(7), rows[2].Venue(7).LocationID)
}

func TestParseVenuesColumnOrderAndExtras(t *testing.T) {
	input := "capacity,notes,venue_name,personnel_required,location_name\n" +
		"40,ignored,Loft,2,Balti\n"

	rows, err := ParseVenues(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Loft", rows[0].VenueName)
	assert.Equal(t, "Balti", rows[0].LocationName)
	assert.Equal(t, 40, rows[0].Capacity)
}

func TestParseVenuesErrors(t *testing.T) {
	header := "location_name,venue_name,capacity,personnel_required,open_time,close_time\n"

	tests := []struct {
		name  string
		input string
		line  int
		field string
	}{
		{name: "empty file", input: ""},
		{name: "missing column", input: "location_name,venue_name,capacity\n", line: 1, field: ColPersonnelRequired},
		{name: "non numeric capacity", input: header + "A,Hall,many,3,09:00,23:00\n", line: 2, field: ColCapacity},
		{name: "negative personnel", input: header + "A,Hall,10,3,09:00,23:00\nA,Patio,10,-1,09:00,23:00\n", line: 3, field: ColPersonnelRequired},
		{name: "bad open time", input: header + "A,Hall,10,3,9am,23:00\n", line: 2, field: ColOpenTime},
		{name: "missing venue name", input: header + "A,,10,3,09:00,23:00\n", line: 2, field: ColVenueName},
		{name: "missing capacity", input: header + "A,Hall,,3,09:00,23:00\n", line: 2, field: ColCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseVenues(strings.NewReader(tt.input))
			assert.Nil(t, rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrImport))

			var ie *entity.ImportError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.line, ie.Line)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestParsePersonnel(t *testing.T) {
	input := "month,available_personnel\n2024-05,10\n2024-05,12\n 2024-06 ,0\n"

	rows, err := ParsePersonnel(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, PersonnelRow{Line: 2, Month: "2024-05", AvailablePersonnel: 10}, rows[0])
	assert.Equal(t, "2024-06", rows[2].Month)
	assert.Equal(t, &entity.PersonnelAvailability{Month: "2024-05", AvailablePersonnel: 12}, rows[1].Record())
}

func TestParsePersonnelErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "bad month", input: "month,available_personnel\nMay 2024,10\n", field: ColMonth},
		{name: "empty month", input: "month,available_personnel\n,10\n", field: ColMonth},
		{name: "negative count", input: "month,available_personnel\n2024-05,-3\n", field: ColAvailablePersonnel},
		{name: "fractional count", input: "month,available_personnel\n2024-05,2.5\n", field: ColAvailablePersonnel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePersonnel(strings.NewReader(tt.input))
			var ie *entity.ImportError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, 2, ie.Line)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	rows, err := ParsePersonnel(strings.NewReader("month,available_personnel\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
