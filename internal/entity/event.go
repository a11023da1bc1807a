package entity

import "time"

type EventType string

const (
	EventTypeWedding     EventType = "wedding"
	EventTypeBirthday    EventType = "birthday"
	EventTypePrivate     EventType = "private"
	EventTypeChristening EventType = "christening"
	EventTypeCorporate   EventType = "corporate"
)

const (
	MinDurationHours = 1
	MaxDurationHours = 24
)

// EventTypes lists the bookable event types in display order.
var EventTypes = []EventType{
	EventTypeWedding,
	EventTypeBirthday,
	EventTypePrivate,
	EventTypeChristening,
	EventTypeCorporate,
}

var eventTypeLabels = map[EventType]string{
	EventTypeWedding:     "Wedding",
	EventTypeBirthday:    "Birthday party",
	EventTypePrivate:     "Private function",
	EventTypeChristening: "Christening",
	EventTypeCorporate:   "Corporate retreat",
}

func (t EventType) Valid() bool {
	_, ok := eventTypeLabels[t]
	return ok
}

func (t EventType) Label() string {
	if l, ok := eventTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

type Event struct {
	ID            int64      `json:"id" db:"id"`
	EventType     EventType  `json:"event_type" db:"event_type"`
	StartTime     CustomTime `json:"start_time" db:"start_time"`
	DurationHours int        `json:"duration_hours" db:"duration_hours"`
	Participants  int        `json:"participants" db:"participants"`
	VenueID       int64      `json:"venue_id" db:"venue_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// EndTime is the exclusive end of the event window.
func (e Event) EndTime() time.Time {
	return e.StartTime.Add(time.Duration(e.DurationHours) * time.Hour)
}

type EventWithVenue struct {
	Event
	VenueName string `json:"venue_name"`
}

// EventLoad is the staffing demand an event puts on the shared personnel pool:
// its window plus the personnel requirement of the venue it occupies.
type EventLoad struct {
	EventID           int64
	VenueID           int64
	StartTime         time.Time
	DurationHours     int
	PersonnelRequired int
}

func (l EventLoad) EndTime() time.Time {
	return l.StartTime.Add(time.Duration(l.DurationHours) * time.Hour)
}

// ActiveAt reports whether t falls inside [start, end).
func (l EventLoad) ActiveAt(t time.Time) bool {
	return !l.StartTime.After(t) && l.EndTime().After(t)
}
