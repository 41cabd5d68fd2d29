package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDatetime is returned by ParseDatetime for unrecognised input.
var ErrInvalidDatetime = errors.New("invalid datetime")

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateOnly = "2006-01-02"

// ParseDatetime accepts RFC 3339 timestamps (fractional seconds optional) and
// zone-less date-times with a "T" or a space separator, which are read in loc.
// A bare date is midnight UTC, whatever loc is. A nil loc means UTC. The
// result is always in UTC.
func ParseDatetime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDatetime
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnly, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDatetime
}
