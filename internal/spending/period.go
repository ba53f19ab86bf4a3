// Package spending derives budget consumption figures from a limit and the
// amount spent in a calendar month.
package spending

import (
	"fmt"
	"time"
)

const (
	MinYear = 1970
	MaxYear = 9999
)

// Period is one calendar month in a fixed location.
type Period struct {
	Month    int
	Year     int
	Location *time.Location
}

// Start is the first instant of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, p.location())
}

// End is the last instant of the month. Day 0 of the next month normalises to the
// last day of this one, so month lengths and leap years need no table.
func (p Period) End() time.Time {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 23, 59, 59, int(time.Second-time.Nanosecond), p.location())
}

// Bounds returns Start and End converted to UTC, the zone expense dates are stored in.
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start().UTC(), p.End().UTC()
}

// Contains reports whether t falls inside the month, both ends inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && !t.After(p.End())
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("month %d is outside 1-12", p.Month)
	}
	if p.Year < MinYear || p.Year > MaxYear {
		return fmt.Errorf("year %d is outside %d-%d", p.Year, MinYear, MaxYear)
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Resolver turns optional month/year inputs into a Period, defaulting to the current month.
type Resolver struct {
	location *time.Location
	now      func() time.Time
}

func NewResolver(location *time.Location) *Resolver {
	if location == nil {
		location = time.UTC
	}
	return &Resolver{location: location, now: time.Now}
}

// NewResolverWithClock is used by tests that need a fixed "now".
func NewResolverWithClock(location *time.Location, now func() time.Time) *Resolver {
	r := NewResolver(location)
	r.now = now
	return r
}

// Resolve fills in a missing month or year from the current date.
func (r *Resolver) Resolve(month, year *int) Period {
	current := r.now().In(r.location)

	p := Period{
		Month:    int(current.Month()),
		Year:     current.Year(),
		Location: r.location,
	}
	if month != nil {
		p.Month = *month
	}
	if year != nil {
		p.Year = *year
	}
	return p
}

// PeriodOf returns the month that t belongs to in the resolver's location.
func (r *Resolver) PeriodOf(t time.Time) Period {
	local := t.In(r.location)
	return Period{Month: int(local.Month()), Year: local.Year(), Location: r.location}
}

func (r *Resolver) Location() *time.Location {
	return r.location
}
