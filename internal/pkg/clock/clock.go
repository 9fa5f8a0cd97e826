// Package clock is the time source used for "now" and "today" semantics.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns the wall clock.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant. Used in tests.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// Set moves the fixed clock.
func (f *Fixed) Set(t time.Time) {
	f.T = t
}

// Today returns the calendar date of c.Now() in loc, as midnight UTC.
// Dates are always carried as UTC midnights so they compare and scan
// identically to PostgreSQL DATE values.
func Today(c Clock, loc *time.Location) time.Time {
	return DateOf(c.Now(), loc)
}

// DateOf truncates t to its calendar date in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last calendar day of month/year.
func MonthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
