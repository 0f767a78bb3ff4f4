package utils

import (
	"fmt"
	"time"
)

// ParseTimestamp accepts RFC3339 with or without fractional seconds, and the
// offset-less forms produced by HTML date/datetime inputs (read as UTC).
func ParseTimestamp(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// -----------------------------------------------------------------------------

// FormatTimestamp renders an instant the way the backend emits ts_utc.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// -----------------------------------------------------------------------------

// LocalLabel renders the HH:MM axis label in loc (local time when nil).
func LocalLabel(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}
