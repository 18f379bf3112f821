package recurrence

import (
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// Enumerate returns the ascending, de-duplicated dates on which the course
// takes place within [rangeStart, rangeEnd], both inclusive. Dates inside any
// holiday are dropped without a replacement.
func Enumerate(schedule models.CourseSchedule, rangeStart, rangeEnd time.Time, holidays []models.HolidayRange) ([]time.Time, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	from, to, ok := effectiveWindow(schedule, DateOf(rangeStart), DateOf(rangeEnd))
	if !ok {
		return []time.Time{}, nil
	}

	var candidates []time.Time
	switch schedule.Frequency {
	case models.FrequencyWeekly:
		candidates = stepFrom(nextWeekday(from, weekdayOf(schedule)), to, 7)
	case models.FrequencyBiweekly:
		if schedule.WeekParity == models.WeekParityAll || schedule.WeekParity == "" {
			candidates = stepFrom(biweeklyStart(schedule, from), to, 14)
		} else {
			candidates = stepFrom(nextWeekday(from, weekdayOf(schedule)), to, 7)
		}
	case models.FrequencyMonthly:
		candidates = monthlyCandidates(schedule, from, to)
	}

	holidaySpans := normalizeHolidays(holidays)
	dates := make([]time.Time, 0, len(candidates))
	for _, date := range candidates {
		if !MatchesParity(date, schedule.WeekParity) {
			continue
		}
		if onHoliday(date, holidaySpans) {
			continue
		}
		if n := len(dates); n > 0 && !date.After(dates[n-1]) {
			continue
		}
		dates = append(dates, date)
	}
	return dates, nil
}

func effectiveWindow(schedule models.CourseSchedule, rangeStart, rangeEnd time.Time) (time.Time, time.Time, bool) {
	from := rangeStart
	if courseStart := DateOf(schedule.StartDate); courseStart.After(from) {
		from = courseStart
	}
	to := rangeEnd
	if schedule.EndDate != nil {
		if courseEnd := DateOf(*schedule.EndDate); courseEnd.Before(to) {
			to = courseEnd
		}
	}
	return from, to, !from.After(to)
}

func weekdayOf(schedule models.CourseSchedule) time.Weekday {
	return time.Weekday(schedule.DayOfWeek)
}

// anchor is the first lesson day of the course, independent of any requested range.
func anchor(schedule models.CourseSchedule) time.Time {
	return nextWeekday(DateOf(schedule.StartDate), weekdayOf(schedule))
}

// biweeklyStart aligns the fortnightly cadence to the course anchor and returns
// the first cadence date on or after from.
func biweeklyStart(schedule models.CourseSchedule, from time.Time) time.Time {
	first := anchor(schedule)
	if !first.Before(from) {
		return first
	}
	steps := (daysBetween(first, from) + 13) / 14
	return first.AddDate(0, 0, 14*steps)
}

func stepFrom(first, to time.Time, stride int) []time.Time {
	var out []time.Time
	for date := first; !date.After(to); date = date.AddDate(0, 0, stride) {
		out = append(out, date)
	}
	return out
}

// monthlyCandidates emits the same ordinal weekday of every month as the
// course anchor, e.g. the third Tuesday.
func monthlyCandidates(schedule models.CourseSchedule, from, to time.Time) []time.Time {
	ordinal := weekdayOrdinal(anchor(schedule))
	weekday := weekdayOf(schedule)

	var out []time.Time
	month := Date(from.Year(), from.Month(), 1)
	for !month.After(to) {
		date := nthWeekdayOfMonth(month.Year(), month.Month(), weekday, ordinal)
		if !date.Before(from) && !date.After(to) {
			out = append(out, date)
		}
		month = month.AddDate(0, 1, 0)
	}
	return out
}

func normalizeHolidays(holidays []models.HolidayRange) []models.HolidayRange {
	out := make([]models.HolidayRange, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, models.HolidayRange{
			ID:        h.ID,
			Name:      h.Name,
			StartDate: DateOf(h.StartDate),
			EndDate:   DateOf(h.EndDate),
		})
	}
	return out
}

func onHoliday(date time.Time, holidays []models.HolidayRange) bool {
	for _, h := range holidays {
		if h.Contains(date) {
			return true
		}
	}
	return false
}
