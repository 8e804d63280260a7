// Package timewindow decides which calendar day an instant belongs to.
//
// Instants are stored in UTC. Every "what day is it" question is answered
// by projecting the instant into the fixed Reference zone.
package timewindow

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Reference is the household's zone, UTC+05:30.
var Reference = time.FixedZone("IST", 5*60*60+30*60)

const dateLayout = "2006-01-02"

// Clock returns the current instant. Tests inject a fixed one.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Date is a calendar date with no time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf projects t into the Reference zone and returns its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.In(Reference).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current date in the Reference zone.
func Today(c Clock) Date {
	return DateOf(c.Now())
}

// Yesterday is the day before Today.
func Yesterday(c Clock) Date {
	return Today(c).AddDays(-1)
}

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d Date) Date {
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: Reference}
	return DateOf(cfg.With(d.Time()).BeginningOfWeek())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, Reference)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time is midnight of d in the Reference zone.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Reference)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(o Date) bool { return d.compare(o) < 0 }

func (d Date) After(o Date) bool { return d.compare(o) > 0 }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return d.Year - o.Year
	case d.Month != o.Month:
		return int(d.Month) - int(o.Month)
	default:
		return d.Day - o.Day
	}
}

// DaysBetween counts whole days from d to o; negative when o is earlier.
func DaysBetween(d, o Date) int {
	// Reference has no DST, so every day is exactly 24h.
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}
