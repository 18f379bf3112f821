package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/music-school-api/internal/models"
)

func TestISOWeekNumberAndYear(t *testing.T) {
	cases := []struct {
		date     time.Time
		week     int
		weekYear int
	}{
		{Date(2026, time.January, 1), 1, 2026},
		{Date(2026, time.January, 6), 2, 2026},
		{Date(2026, time.December, 29), 53, 2026},
		{Date(2027, time.January, 1), 53, 2026},
		{Date(2027, time.January, 5), 1, 2027},
		{Date(2024, time.December, 30), 1, 2025},
	}
	for _, tc := range cases {
		t.Run(tc.date.Format(models.DateLayout), func(t *testing.T) {
			assert.Equal(t, tc.week, ISOWeekNumber(tc.date))
			assert.Equal(t, tc.weekYear, ISOWeekYear(tc.date))
		})
	}
}

func TestIs53WeekYear(t *testing.T) {
	assert.True(t, Is53WeekYear(2015))
	assert.True(t, Is53WeekYear(2020))
	assert.True(t, Is53WeekYear(2026))
	assert.False(t, Is53WeekYear(2024))
	assert.False(t, Is53WeekYear(2025))
	assert.False(t, Is53WeekYear(2027))
}

func TestWeekParity(t *testing.T) {
	even := Date(2026, time.January, 6)
	odd := Date(2026, time.January, 13)

	assert.Equal(t, models.WeekParityEven, WeekParityOf(even))
	assert.Equal(t, models.WeekParityOdd, WeekParityOf(odd))

	assert.True(t, MatchesParity(even, models.WeekParityAll))
	assert.True(t, MatchesParity(odd, models.WeekParityAll))
	assert.True(t, MatchesParity(odd, ""))
	assert.True(t, MatchesParity(odd, models.WeekParityOdd))
	assert.False(t, MatchesParity(odd, models.WeekParityEven))
	assert.True(t, MatchesParity(even, models.WeekParityEven))
	assert.False(t, MatchesParity(even, models.WeekParityOdd))
}

func TestWeek53AndWeek1ShareParity(t *testing.T) {
	lastWeek := Date(2026, time.December, 29)
	firstWeek := Date(2027, time.January, 5)

	assert.Equal(t, 53, ISOWeekNumber(lastWeek))
	assert.Equal(t, 1, ISOWeekNumber(firstWeek))
	assert.Equal(t, WeekParityOf(lastWeek), WeekParityOf(firstWeek))
}

func TestNthWeekdayOfMonthFallsBackToLast(t *testing.T) {
	assert.Equal(t, Date(2026, time.January, 20), nthWeekdayOfMonth(2026, time.January, time.Tuesday, 3))
	assert.Equal(t, Date(2026, time.March, 31), nthWeekdayOfMonth(2026, time.March, time.Tuesday, 5))
	assert.Equal(t, Date(2026, time.April, 28), nthWeekdayOfMonth(2026, time.April, time.Tuesday, 5))
}
