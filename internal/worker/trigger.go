package worker

import (
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// Poll advances the daily trigger for a tick observed at now. runAt is the
// offset from local midnight after which the day's run becomes due. The
// returned bool is true on exactly one tick per civil day.
func Poll(state models.ScheduleState, now time.Time, runAt time.Duration) (models.ScheduleState, bool) {
	today := now.Format(models.DateLayout)
	if state.LastRunDate != today {
		state = models.ScheduleState{LastRunDate: today}
	}
	if state.HasRunToday {
		return state, false
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(midnight.Add(runAt)) {
		return state, false
	}

	state.HasRunToday = true
	return state, true
}
