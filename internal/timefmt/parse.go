// Package timefmt renders timestamps the way the profile pages display them:
// fixed-width calendar and clock strings and coarse "time ago" labels.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInstant is returned when a timestamp string cannot be parsed.
var ErrInvalidInstant = errors.New("invalid instant")

// Layouts carrying an explicit offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// Layouts without an offset are read as local wall time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Parse normalizes an ISO-8601 timestamp to a concrete instant.
//
// Date-only strings ("2024-01-08") are read as UTC midnight and date-time
// strings without an offset as local time, matching how browsers treat them.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidInstant)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInstant, s)
}
