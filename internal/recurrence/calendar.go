// Package recurrence expands course blueprints into concrete lesson dates and
// lesson specs. Everything here is pure and safe for concurrent use.
package recurrence

import (
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// Date returns the civil date year-month-day at 00:00 UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock and zone of t, keeping its civil date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ISOWeekNumber returns the ISO 8601 week of the year, 1..53.
func ISOWeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// ISOWeekYear returns the ISO week-numbering year, which differs from the
// calendar year for some dates around New Year.
func ISOWeekYear(t time.Time) int {
	year, _ := t.ISOWeek()
	return year
}

// Is53WeekYear reports whether the ISO year has a week 53.
// December 28 always lies in the last ISO week of its year.
func Is53WeekYear(isoYear int) bool {
	return ISOWeekNumber(Date(isoYear, time.December, 28)) == 53
}

// WeekParityOf classifies the ISO week of t as odd or even.
//
// Week 53 and week 1 of the following year are both odd, so a parity filtered
// biweekly course fires in two consecutive weeks across that boundary.
func WeekParityOf(t time.Time) models.WeekParity {
	if ISOWeekNumber(t)%2 == 1 {
		return models.WeekParityOdd
	}
	return models.WeekParityEven
}

// MatchesParity reports whether t satisfies the parity filter. An empty parity
// is treated as ALL.
func MatchesParity(t time.Time, parity models.WeekParity) bool {
	if parity == models.WeekParityAll || parity == "" {
		return true
	}
	return WeekParityOf(t) == parity
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// nextWeekday returns the first date on or after from that falls on weekday.
func nextWeekday(from time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// weekdayOrdinal returns the position of t among the same weekdays of its month (1..5).
func weekdayOrdinal(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// nthWeekdayOfMonth returns the n-th weekday of the month. When the month has
// fewer than n such days the last one is returned.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := nextWeekday(Date(year, month, 1), weekday)
	candidate := first.AddDate(0, 0, 7*(n-1))
	for candidate.Month() != month {
		candidate = candidate.AddDate(0, 0, -7)
	}
	return candidate
}
