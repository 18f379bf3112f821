package models

import "time"

// Frequency describes how often a course blueprint recurs.
type Frequency string

// Supported recurrence frequencies.
const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

// WeekParity filters occurrences by the parity of their ISO week number.
type WeekParity string

// Week parity values. ALL disables the filter.
const (
	WeekParityAll  WeekParity = "ALL"
	WeekParityOdd  WeekParity = "ODD"
	WeekParityEven WeekParity = "EVEN"
)

// CourseType decides how occurrences fan out into lessons.
type CourseType string

// Course types.
const (
	CourseTypeIndividual CourseType = "INDIVIDUAL"
	CourseTypeGroup      CourseType = "GROUP"
	CourseTypeWorkshop   CourseType = "WORKSHOP"
)

// CourseStatus marks whether a course participates in bulk generation.
type CourseStatus string

// Course statuses.
const (
	CourseStatusActive   CourseStatus = "ACTIVE"
	CourseStatusInactive CourseStatus = "INACTIVE"
)

// Course is the recurring blueprint stored in the courses table.
type Course struct {
	ID         string       `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	TeacherID  string       `db:"teacher_id" json:"teacher_id"`
	RoomID     *string      `db:"room_id" json:"room_id,omitempty"`
	CourseType CourseType   `db:"course_type" json:"course_type"`
	DayOfWeek  int          `db:"day_of_week" json:"day_of_week"`
	StartTime  string       `db:"start_time" json:"start_time"`
	EndTime    string       `db:"end_time" json:"end_time"`
	Frequency  Frequency    `db:"frequency" json:"frequency"`
	WeekParity WeekParity   `db:"week_parity" json:"week_parity"`
	StartDate  time.Time    `db:"start_date" json:"start_date"`
	EndDate    *time.Time   `db:"end_date" json:"end_date,omitempty"`
	Status     CourseStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// EnrollmentWindow is the period during which a student attends a course.
// A nil EndDate means the enrollment is still open.
type EnrollmentWindow struct {
	CourseID  string     `db:"course_id" json:"course_id"`
	StudentID string     `db:"student_id" json:"student_id"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// Covers reports whether the enrollment is active on the given civil date.
func (w EnrollmentWindow) Covers(date time.Time) bool {
	day := civilDate(date)
	if w.StartDate != nil && day.Before(civilDate(*w.StartDate)) {
		return false
	}
	if w.EndDate != nil && day.After(civilDate(*w.EndDate)) {
		return false
	}
	return true
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CourseSchedule is the read-only view of a course used for lesson generation.
type CourseSchedule struct {
	Course
	Enrollments []EnrollmentWindow `json:"enrollments"`
}

// EnrolledStudentIDs returns the distinct student ids in enrollment order.
func (s CourseSchedule) EnrolledStudentIDs() []string {
	seen := make(map[string]struct{}, len(s.Enrollments))
	ids := make([]string, 0, len(s.Enrollments))
	for _, e := range s.Enrollments {
		if _, ok := seen[e.StudentID]; ok {
			continue
		}
		seen[e.StudentID] = struct{}{}
		ids = append(ids, e.StudentID)
	}
	return ids
}
