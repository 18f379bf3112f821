package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/music-school-api/internal/models"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestPoll(t *testing.T) {
	runAt := 2 * time.Hour

	tests := []struct {
		name    string
		state   models.ScheduleState
		now     time.Time
		want    models.ScheduleState
		wantDue bool
	}{
		{
			name: "first poll before run time",
			now:  at(10, 1, 59),
			want: models.ScheduleState{LastRunDate: "2026-03-10"},
		},
		{
			name:    "first poll at run time",
			now:     at(10, 2, 0),
			want:    models.ScheduleState{LastRunDate: "2026-03-10", HasRunToday: true},
			wantDue: true,
		},
		{
			name:  "already ran today",
			state: models.ScheduleState{LastRunDate: "2026-03-10", HasRunToday: true},
			now:   at(10, 23, 0),
			want:  models.ScheduleState{LastRunDate: "2026-03-10", HasRunToday: true},
		},
		{
			name:  "day rollover resets before run time",
			state: models.ScheduleState{LastRunDate: "2026-03-10", HasRunToday: true},
			now:   at(11, 0, 30),
			want:  models.ScheduleState{LastRunDate: "2026-03-11"},
		},
		{
			name:    "missed days run once on the next poll",
			state:   models.ScheduleState{LastRunDate: "2026-03-01", HasRunToday: true},
			now:     at(11, 9, 0),
			want:    models.ScheduleState{LastRunDate: "2026-03-11", HasRunToday: true},
			wantDue: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, due := Poll(tc.state, tc.now, runAt)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantDue, due)
		})
	}
}

func TestPollFiresOncePerDay(t *testing.T) {
	var state models.ScheduleState
	fired := 0
	for minute := 0; minute < 3*24*60; minute += 15 {
		now := at(1, 0, 0).Add(time.Duration(minute) * time.Minute)
		var due bool
		state, due = Poll(state, now, 2*time.Hour)
		if due {
			fired++
			assert.GreaterOrEqual(t, now.Hour(), 2)
		}
	}
	assert.Equal(t, 3, fired)
}
