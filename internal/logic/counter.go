package logic

import (
	"fmt"
	"time"
)

// Odometer limits. Days is allowed to reach PeriodDays, which marks completion.
const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	PeriodDays     = 30
)

// ElapsedTime counts minutes, hours and days since the last confirmed reset.
type ElapsedTime struct {
	Minutes uint8
	Hours   uint8
	Days    uint8
}

// Advance adds one minute. It returns true exactly once, on the tick that
// carries Days to PeriodDays. A completed counter does not move.
func (e *ElapsedTime) Advance() bool {
	if e.Complete() {
		return false
	}

	e.Minutes++
	if e.Minutes < MinutesPerHour {
		return false
	}
	e.Minutes = 0

	e.Hours++
	if e.Hours < HoursPerDay {
		return false
	}
	e.Hours = 0

	e.Days++
	return e.Days >= PeriodDays
}

// Reset zeroes all fields.
func (e *ElapsedTime) Reset() {
	*e = ElapsedTime{}
}

// Complete reports whether the tracked period has fully elapsed.
func (e ElapsedTime) Complete() bool {
	return e.Days >= PeriodDays
}

// Total returns the elapsed time as a duration.
func (e ElapsedTime) Total() time.Duration {
	return time.Duration(e.Days)*24*time.Hour +
		time.Duration(e.Hours)*time.Hour +
		time.Duration(e.Minutes)*time.Minute
}

// Remaining returns the per-unit countdown {29-days, 23-hours, 59-minutes},
// clamped at zero once the period is complete.
func (e ElapsedTime) Remaining() ElapsedTime {
	return ElapsedTime{
		Minutes: satSub(MinutesPerHour-1, e.Minutes),
		Hours:   satSub(HoursPerDay-1, e.Hours),
		Days:    satSub(PeriodDays-1, e.Days),
	}
}

func (e ElapsedTime) String() string {
	return fmt.Sprintf("%dd %02dh %02dm", e.Days, e.Hours, e.Minutes)
}

func satSub(max, v uint8) uint8 {
	if v >= max {
		return 0
	}
	return max - v
}
