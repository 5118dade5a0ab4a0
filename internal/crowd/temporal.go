package crowd

import "time"

// Resolver decodes the dataset's day-serial dates and reports the current time.
// Dates count days from 1899-12-30, the spreadsheet epoch.
type Resolver struct {
	loc   *time.Location
	clock func() time.Time
}

// NewResolver returns a Resolver for loc. A nil clock means time.Now.
func NewResolver(loc *time.Location, clock func() time.Time) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{loc: loc, clock: clock}
}

// Location returns the zone calendar days are resolved in.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the wall clock in the resolver's location.
func (r *Resolver) Now() time.Time {
	return r.clock().In(r.loc)
}

// Day returns midnight of the calendar day encoded by date.
func (r *Resolver) Day(date *int) (time.Time, bool) {
	if date == nil {
		return time.Time{}, false
	}
	return time.Date(1899, time.December, 30+*date, 0, 0, 0, 0, r.loc), true
}

// Timestamp combines date and hour into an absolute time. It reports false
// when either is missing or the hour is outside 0..23.
func (r *Resolver) Timestamp(date, hour *int) (time.Time, bool) {
	if date == nil || hour == nil || *hour < 0 || *hour > 23 {
		return time.Time{}, false
	}
	return time.Date(1899, time.December, 30+*date, *hour, 0, 0, 0, r.loc), true
}

// SameDay compares the calendar days of a and b in the resolver's location.
func (r *Resolver) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(r.loc).Date()
	by, bm, bd := b.In(r.loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether date falls on now's calendar day.
func (r *Resolver) IsToday(date *int, now time.Time) bool {
	day, ok := r.Day(date)
	if !ok {
		return false
	}
	return r.SameDay(day, now)
}

// Serial returns the day-serial encoding of t's calendar day. It is the
// inverse of Day and is mostly useful for building fixtures.
func (r *Resolver) Serial(t time.Time) int {
	y, m, d := t.In(r.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(epoch).Hours() / 24)
}
