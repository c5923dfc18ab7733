package normalization

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTimestamp is returned when a row's timestamp cannot be parsed.
// The whole batch is rejected.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Accepted textual layouts, tried in order. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Numeric timestamps at or above this value are milliseconds, below it seconds.
const epochMillisThreshold = 100_000_000_000

// maxMillis bounds float timestamps to the int64 millisecond range.
const maxMillis float64 = 1 << 63

// ParseTimestamp parses a row timestamp into Unix milliseconds.
// Accepts RFC 3339, "YYYY-MM-DD HH:MM:SS[.fff]", date-only, and Unix
// seconds or milliseconds.
func ParseTimestamp(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrMalformedTimestamp
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= epochMillisThreshold || n <= -epochMillisThreshold {
			return n, nil
		}
		return n * 1000, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !isNaNOrInf(f) {
		ms := f
		if f < epochMillisThreshold && f > -epochMillisThreshold {
			ms = f * 1000
		}
		if ms >= maxMillis || ms < -maxMillis {
			return 0, ErrMalformedTimestamp
		}
		return int64(ms), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}

	return 0, ErrMalformedTimestamp
}
