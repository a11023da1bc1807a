package service

import (
	"context"
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"
	"github.com/mathmusci/optivenue/internal/clock"
	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/entity"
)

// icalFloating is a DATE-TIME without zone: start times are local wall clock.
const icalFloating = "20060102T150405"

type calendarService struct {
	events database.EventRepository
	clock  clock.Clock
	domain string
}

// NewCalendarService builds event UIDs as "event-<id>@domain".
func NewCalendarService(events database.EventRepository, clk clock.Clock, domain string) CalendarService {
	if domain == "" {
		domain = "optivenue"
	}
	return &calendarService{events: events, clock: clk, domain: domain}
}

func (s *calendarService) WriteCalendar(ctx context.Context, w io.Writer) error {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//optivenue//venue bookings//EN")
	cal.SetXWRCalName("Venue bookings")

	stamp := s.clock.Now()
	for _, e := range events {
		ev := cal.AddEvent(fmt.Sprintf("event-%d@%s", e.ID, s.domain))
		ev.SetDtStampTime(stamp)
		if !e.CreatedAt.IsZero() {
			ev.SetCreatedTime(e.CreatedAt)
		}
		ev.SetProperty(ics.ComponentPropertyDtStart, e.StartTime.Format(icalFloating))
		ev.SetProperty(ics.ComponentPropertyDtEnd, e.EndTime().Format(icalFloating))
		ev.SetSummary(fmt.Sprintf("%s (%d guests)", e.EventType.Label(), e.Participants))
		ev.SetLocation(e.VenueName)
		ev.SetDescription(fmt.Sprintf("%s at %s, %s - %s",
			e.EventType.Label(), e.VenueName,
			e.StartTime.Format(entity.CustomTimeLayout), e.EndTime().Format(entity.CustomTimeLayout)))
	}

	return cal.SerializeTo(w)
}
