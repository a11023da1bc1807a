package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CustomTime is a naive wall-clock timestamp in the booking form format.
// Values are always kept in UTC so time-of-day and month arithmetic is stable.
type CustomTime struct {
	time.Time
}

const CustomTimeLayout = "2006-01-02T15:04"

// TimeFormatError reports a timestamp that does not match CustomTimeLayout.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: expected YYYY-MM-DDTHH:MM", e.Value)
}

func ParseCustomTime(s string) (CustomTime, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(CustomTimeLayout, s, time.UTC)
	if err != nil {
		return CustomTime{}, &TimeFormatError{Value: s}
	}
	return CustomTime{Time: t}, nil
}

func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &TimeFormatError{Value: string(b)}
	}
	parsed, err := ParseCustomTime(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

func (ct CustomTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ct.Format(CustomTimeLayout) + `"`), nil
}

func (ct CustomTime) String() string {
	return ct.Format(CustomTimeLayout)
}

// Value stores the wall-clock reading as a zone-less timestamp.
func (ct CustomTime) Value() (driver.Value, error) {
	return WallClock(ct.Time), nil
}

func (ct *CustomTime) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		ct.Time = WallClock(v)
	case []byte:
		return ct.Scan(string(v))
	case string:
		t, err := time.ParseInLocation("2006-01-02 15:04:05", strings.TrimSuffix(v, "+00:00"), time.UTC)
		if err != nil {
			return fmt.Errorf("cannot scan %q into CustomTime: %w", v, err)
		}
		ct.Time = t
	default:
		return fmt.Errorf("cannot scan type %T into CustomTime", value)
	}
	return nil
}

// WallClock keeps the wall-clock reading of t and re-labels it as UTC.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
