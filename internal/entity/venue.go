package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Location struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Venue struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Capacity          int       `json:"capacity" db:"capacity"`
	PersonnelRequired int       `json:"personnel_required" db:"personnel_required"`
	LocationID        int64     `json:"location_id" db:"location_id"`
	OpenTime          TimeOfDay `json:"open_time" db:"open_time"`
	CloseTime         TimeOfDay `json:"close_time" db:"close_time"`
}

// VenueWithLocation is a venue joined with the name of its owning location.
type VenueWithLocation struct {
	Venue
	LocationName string `json:"location_name"`
}

// Overnight reports whether the opening window crosses midnight.
func (v Venue) Overnight() bool {
	return v.CloseTime < v.OpenTime
}

// Default opening window applied when an import row leaves the times empty.
var (
	DefaultOpenTime  = MustTimeOfDay("09:00")
	DefaultCloseTime = MustTimeOfDay("23:00")
)

// TimeOfDay is a wall-clock time measured in seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return OfTime(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
}

func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// OfTime returns the time-of-day component of t in t's own location.
func OfTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Duration is the offset of the time of day from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

func (t TimeOfDay) String() string {
	h, m, s := int(t)/3600, int(t)%3600/60, int(t)%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < secondsPerDay
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	h, m, s := int(t)/3600, int(t)%3600/60, int(t)%60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}

func (t *TimeOfDay) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = OfTime(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan type %T into TimeOfDay", value)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	// postgres TIME columns may carry fractional seconds
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
