package util

import (
	"strconv"
	"time"
)

// DateLayout is the calendar date format exchanged with the prediction service.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Epoch values below this are seconds, values up to maxUnixMilli are milliseconds.
const (
	maxUnixSeconds = 1e11
	maxUnixMilli   = 1e14
)

// ParseTime tries RFC3339, RFC3339Nano, YYYY-MM-DD and unix seconds or milliseconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, ok := ParseDate(s); ok {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ParseUnix(ts)
	}
	return time.Time{}, false
}

// ParseUnix reads a positive epoch in seconds or milliseconds, told apart by magnitude.
// Larger values (micro or nanoseconds) are rejected.
func ParseUnix(ts int64) (time.Time, bool) {
	switch {
	case ts <= 0:
		return time.Time{}, false
	case ts < maxUnixSeconds:
		return time.Unix(ts, 0).UTC(), true
	case ts < maxUnixMilli:
		return time.UnixMilli(ts).UTC(), true
	default:
		return time.Time{}, false
	}
}
