package filter

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// ParseBound parses a date-range bound given either as RFC3339 or as a bare
// calendar date. A bare date used as an upper bound covers the whole day.
func ParseBound(value string, upper bool) (*time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ParseRange builds a DateRange from raw query values.
func ParseRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if r.From, err = ParseBound(from, false); err != nil {
		return DateRange{}, err
	}
	if r.To, err = ParseBound(to, true); err != nil {
		return DateRange{}, err
	}
	return r, nil
}
