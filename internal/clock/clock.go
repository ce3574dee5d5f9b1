// Package clock is the single source of "now" for the engine. Calendar-day
// comparisons (check-ins, daily validation caps, monthly resets) are made in
// one configured location so every caller agrees on where midnight falls.
package clock

import (
	"sync"
	"time"
)

// Layouts used for calendar-day and calendar-month keys.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

type Clock interface {
	Now() time.Time
	// Today returns the calendar day of Now in the clock's location.
	Today() string
	Location() *time.Location
}

// SystemClock reads wall time. A nil Loc means UTC.
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time {
	return time.Now().In(c.Location())
}

func (c SystemClock) Today() string {
	return DayOf(c.Now(), c.Location())
}

func (c SystemClock) Location() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

// DayOf formats t as a calendar day in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// MonthOf formats t as a calendar month (YYYY-MM) in loc.
func MonthOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(MonthLayout)
}

// Fixed is a manually advanced clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now, loc: time.UTC}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Today() string {
	return DayOf(f.Now(), f.Location())
}

func (f *Fixed) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
