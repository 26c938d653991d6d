package aggregation

import (
	"fmt"
	"time"
)

// MonthLayout is the accepted short form for a report month.
const MonthLayout = "2006-01"

// TimeRange is a half-open interval [From, To).
// A zero bound means unbounded on that side.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// MonthRange returns the calendar month containing t, in UTC.
// The year and month are read from t as given; the range covers the first
// instant of that month up to and including the last instant before the next one.
// Example: MonthRange(2024-05-17) → [2024-05-01T00:00Z, 2024-06-01T00:00Z)
func MonthRange(t time.Time) TimeRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return TimeRange{From: start, To: start.AddDate(0, 1, 0)}
}

// LastInstant is the latest representable time still inside the range.
func (r TimeRange) LastInstant() time.Time {
	return r.To.Add(-time.Nanosecond)
}

// HourOfDay returns the UTC hour (0-23) of t, irrespective of date.
func HourOfDay(t time.Time) int {
	return t.UTC().Hour()
}

// ParseMonth accepts "YYYY-MM" or a full RFC 3339 timestamp.
func ParseMonth(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("month must not be empty")
	}
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM or RFC 3339)", s)
	}
	return t, nil
}
