package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// ErrInvalidSchedule is matched by every ValidationError.
var ErrInvalidSchedule = errors.New("invalid course schedule")

// ValidationError explains why a course schedule cannot be expanded.
type ValidationError struct {
	CourseID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.CourseID != "" {
		return fmt.Sprintf("course %s: %s %s", e.CourseID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidSchedule.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSchedule
}

// ParseClock parses an "HH:MM" or "HH:MM:SS" time of day into an offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

// ValidateSchedule checks the invariants required before enumeration.
func ValidateSchedule(s models.CourseSchedule) error {
	invalid := func(field, reason string) error {
		return &ValidationError{CourseID: s.ID, Field: field, Reason: reason}
	}

	start, err := ParseClock(s.StartTime)
	if err != nil {
		return invalid("start_time", err.Error())
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return invalid("end_time", err.Error())
	}
	if start >= end {
		return invalid("start_time", "must be before end_time")
	}

	switch s.Frequency {
	case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
	default:
		return invalid("frequency", fmt.Sprintf("has unknown value %q", s.Frequency))
	}

	switch s.WeekParity {
	case models.WeekParityAll, models.WeekParityOdd, models.WeekParityEven, "":
	default:
		return invalid("week_parity", fmt.Sprintf("has unknown value %q", s.WeekParity))
	}

	switch s.CourseType {
	case models.CourseTypeIndividual, models.CourseTypeGroup, models.CourseTypeWorkshop:
	default:
		return invalid("course_type", fmt.Sprintf("has unknown value %q", s.CourseType))
	}

	if s.DayOfWeek < int(time.Sunday) || s.DayOfWeek > int(time.Saturday) {
		return invalid("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	if s.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if s.EndDate != nil && DateOf(s.StartDate).After(DateOf(*s.EndDate)) {
		return invalid("start_date", "must not be after end_date")
	}
	return nil
}
