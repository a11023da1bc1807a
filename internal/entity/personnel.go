package entity

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

type PersonnelAvailability struct {
	ID                 int64  `json:"id" db:"id"`
	Month              string `json:"month" db:"month"`
	AvailablePersonnel int    `json:"available_personnel" db:"available_personnel"`
}

// MonthOf returns the YYYY-MM key of t.
func MonthOf(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseMonth validates and normalizes a YYYY-MM key.
func ParseMonth(s string) (string, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

// MonthsBetween lists every month key touched by [start, end), start's month
// included even for an empty window.
func MonthsBetween(start, end time.Time) []string {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	months := []string{MonthOf(first)}
	for m := first.AddDate(0, 1, 0); m.Before(end); m = m.AddDate(0, 1, 0) {
		months = append(months, MonthOf(m))
	}
	return months
}
