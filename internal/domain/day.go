package domain

import (
	"fmt"
	"time"
)

// DayFormat is the canonical string form of a Day and the identifier the
// dose log stores for each taken day.
const DayFormat = "2006-01-02"

// Day identifies one calendar day in the user's local timezone. It is a
// plain value: two Days built from the same wall-clock day compare equal
// regardless of construction path, and a Day is usable as a map key.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDay constructs the Day for the given calendar date. Out-of-range
// components are normalized the way time.Date normalizes them, so
// NewDay(2026, 2, 29) is 2026-03-01.
func NewDay(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DayOf returns the Day containing t in t's location. The time of day is
// discarded; only the wall-clock date survives.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Today returns the current local Day. Operations that compare against
// "today" snapshot it once up front so the day cannot shift mid-operation.
func Today() Day {
	return DayOf(time.Now())
}

// Prev returns the day before d, following standard calendar arithmetic
// across month and year boundaries.
func (d Day) Prev() Day {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DayOf(t)
}

// Next returns the day after d.
func (d Day) Next() Day {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return DayOf(t)
}

// Compare returns -1 if d is before o, 0 if equal, +1 if after.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// After reports whether d is strictly after o.
func (d Day) After(o Day) bool {
	return d.Compare(o) > 0
}

// String formats d in the canonical "YYYY-MM-DD" form. ParseDay is its
// exact inverse.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDay parses a canonical "YYYY-MM-DD" string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
