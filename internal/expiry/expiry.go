// Package expiry computes expiration times for URL records.
package expiry

import "time"

// DefaultHorizonMonths is how far in the future a fresh record expires.
const DefaultHorizonMonths = 10

type Option func(*Calculator)

// WithClock replaces the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// Calculator computes expiration times for fresh and extended records.
type Calculator struct {
	now func() time.Time
}

func New(opts ...Option) *Calculator {
	c := &Calculator{now: time.Now}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compute returns the expiration time of a record.
//
// When current is nil the record is fresh and expires DefaultHorizonMonths
// calendar months from now; days is ignored. Otherwise current is moved by days
// calendar days, which may be zero or negative.
func (c *Calculator) Compute(days int, current *time.Time) time.Time {
	if current == nil {
		return addMonths(c.now(), DefaultHorizonMonths)
	}

	return current.AddDate(0, 0, days)
}

// addMonths moves t by n calendar months, clamping the day to the last day of
// the target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}

	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
