// Package calendar holds the fixed daily slot grid and the date arithmetic
// shared by availability and booking code.
//
// Booking dates and times are stored without a zone. Every time.Time produced
// here is a "naive" value: wall-clock fields copied into UTC so comparisons do
// not shift across zones.
package calendar

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	firstSlotHour = 8
	lastSlotHour  = 18 // exclusive
	slotStep      = 60 * time.Minute

	DefaultRangeDays = 7
	MaxRangeDays     = 30
	HorizonDays      = 90
)

// Clock is the source of "now" for everything time dependent.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Used by tests and tools.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// DailySlots returns the bookable start times of a day, 08:00 to 17:00.
func DailySlots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour)
	start := time.Date(2000, 1, 1, firstSlotHour, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, lastSlotHour, 0, 0, 0, time.UTC)
	for t := start; t.Before(end); t = t.Add(slotStep) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots
}

// IsValidSlot reports whether s is one of DailySlots.
func IsValidSlot(s string) bool {
	for _, slot := range DailySlots() {
		if slot == s {
			return true
		}
	}
	return false
}

// Naive drops the zone of t and keeps its wall-clock fields.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DateOf truncates t to midnight of its wall-clock date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the current naive date of clock.
func Today(clock Clock) time.Time {
	return DateOf(clock.Now())
}

// ParseDate parses a YYYY-MM-DD string into a naive date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// SlotStart combines a date with a grid time into a naive datetime.
func SlotStart(date time.Time, slot string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, slot, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q: %w", slot, err)
	}
	d := DateOf(date)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// DateRange returns every date from start to end inclusive. An end before
// start yields an empty range; callers reject that case before getting here.
func DateRange(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// EndForDays derives the inclusive end date of a range of days days.
func EndForDays(start time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultRangeDays
	}
	return DateOf(start).AddDate(0, 0, days-1)
}

// ClampToHorizon truncates end so it is never later than today+horizonDays.
func ClampToHorizon(end, today time.Time, horizonDays int) time.Time {
	limit := DateOf(today).AddDate(0, 0, horizonDays)
	if DateOf(end).After(limit) {
		return limit
	}
	return DateOf(end)
}
