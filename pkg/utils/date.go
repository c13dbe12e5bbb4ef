package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted by query parameters
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in the local time zone
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DayBounds returns [start, end) of the calendar day containing t
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}
