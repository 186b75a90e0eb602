package utils

import (
	"fmt"
	"sync"
	"time"
)

const (
	timestampLayout = time.RFC3339
	dateOnlyLayout  = "2006-01-02"
)

var (
	locMu sync.RWMutex
	loc   = time.UTC
)

// SetLocation configures the zone used for date-only comparisons.
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("failed to load location %q: %w", name, err)
	}
	locMu.Lock()
	loc = l
	locMu.Unlock()
	return nil
}

// Location returns the configured business time zone.
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return loc
}

// Now returns the current time in the configured location.
func Now() time.Time {
	return time.Now().In(Location())
}

// FormatTimestamp formats a time for storage and API payloads.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location()).Format(timestampLayout)
}

// ParseTimestamp parses a stored timestamp. Empty values yield the zero time.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.In(Location()), nil
	}
	if ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, Location()); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %s", value)
}

// FormatDateOnly formats a time as YYYY-MM-DD.
func FormatDateOnly(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location()).Format(dateOnlyLayout)
}

// StartOfDay returns the midnight timestamp for t in the configured location.
func StartOfDay(t time.Time) time.Time {
	l := Location()
	y, m, d := t.In(l).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, l)
}
