// Package availability holds the pure booking decisions: whether a venue is
// open and free for a window, and whether the shared personnel pool can staff it.
package availability

import (
	"fmt"
	"time"

	"github.com/mathmusci/optivenue/internal/entity"
)

type Reason string

const (
	ReasonClosed        Reason = "closed"
	ReasonOverlap       Reason = "overlap"
	ReasonMissingRecord Reason = "missing_record"
	ReasonUnderstaffed  Reason = "understaffed"
)

// Verdict explains a decision. OK is the only field callers must check.
type Verdict struct {
	OK     bool
	Reason Reason
	// At is the first instant that failed, or the start of the conflicting event.
	At     time.Time
	Detail string
}

func accept() Verdict {
	return Verdict{OK: true}
}

// Window returns [start, start+durationHours).
func Window(start time.Time, durationHours int) (time.Time, time.Time) {
	return start, start.Add(time.Duration(durationHours) * time.Hour)
}

// Overlaps applies half-open semantics: touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(!aEnd.After(bStart) || !aStart.Before(bEnd))
}

// WithinOpeningHours checks both endpoints against the venue's daily window and
// requires the whole window to fit in the opening span that contains start.
func WithinOpeningHours(v entity.Venue, start, end time.Time) bool {
	if !openAt(v, entity.OfTime(start)) || !openAt(v, entity.OfTime(end)) {
		return false
	}
	spanEnd := openingSpanEnd(v, start)
	if v.Overnight() {
		return end.Before(spanEnd)
	}
	return !end.After(spanEnd)
}

func openAt(v entity.Venue, tod entity.TimeOfDay) bool {
	if v.Overnight() {
		return tod >= v.OpenTime || tod < v.CloseTime
	}
	return v.OpenTime <= tod && tod <= v.CloseTime
}

// openingSpanEnd is the closing instant of the opening span holding start.
func openingSpanEnd(v entity.Venue, start time.Time) time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	if v.Overnight() && entity.OfTime(start) >= v.OpenTime {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(v.CloseTime.Duration())
}

// VenueAvailability decides whether venue can host [start, start+durationHours)
// given the events already booked on it.
func VenueAvailability(venue entity.Venue, events []*entity.Event, start time.Time, durationHours int) Verdict {
	start, end := Window(start, durationHours)

	if !WithinOpeningHours(venue, start, end) {
		return Verdict{
			Reason: ReasonClosed,
			At:     start,
			Detail: fmt.Sprintf("%s is open %s-%s", venue.Name, venue.OpenTime, venue.CloseTime),
		}
	}

	for _, e := range events {
		if Overlaps(start, end, e.StartTime.Time, e.EndTime()) {
			return Verdict{
				Reason: ReasonOverlap,
				At:     e.StartTime.Time,
				Detail: fmt.Sprintf("%s is booked %s-%s",
					venue.Name, e.StartTime.Format(entity.CustomTimeLayout), e.EndTime().Format(entity.CustomTimeLayout)),
			}
		}
	}
	return accept()
}

func VenueIsAvailable(venue entity.Venue, events []*entity.Event, start time.Time, durationHours int) bool {
	return VenueAvailability(venue, events, start, durationHours).OK
}
