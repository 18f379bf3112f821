package models

import "time"

// LessonStatus tracks the lifecycle of a lesson.
type LessonStatus string

// Lesson statuses. Generation only ever creates SCHEDULED lessons.
const (
	LessonStatusScheduled LessonStatus = "SCHEDULED"
	LessonStatusCompleted LessonStatus = "COMPLETED"
	LessonStatusCancelled LessonStatus = "CANCELLED"
	LessonStatusNoShow    LessonStatus = "NO_SHOW"
)

// DateLayout is the wire and key format for civil dates.
const DateLayout = "2006-01-02"

// LessonSpec is a lesson that generation intends to create.
type LessonSpec struct {
	CourseID      string       `json:"course_id"`
	ScheduledDate time.Time    `json:"scheduled_date"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	TeacherID     string       `json:"teacher_id"`
	StudentID     *string      `json:"student_id,omitempty"`
	RoomID        *string      `json:"room_id,omitempty"`
	Status        LessonStatus `json:"status"`
}

// Key returns the idempotency key of the spec.
func (s LessonSpec) Key() LessonKey {
	return NewLessonKey(s.CourseID, s.ScheduledDate, s.StudentID)
}

// Lesson is a persisted lesson row.
type Lesson struct {
	ID            string       `db:"id" json:"id"`
	CourseID      string       `db:"course_id" json:"course_id"`
	ScheduledDate time.Time    `db:"scheduled_date" json:"scheduled_date"`
	StartTime     string       `db:"start_time" json:"start_time"`
	EndTime       string       `db:"end_time" json:"end_time"`
	TeacherID     string       `db:"teacher_id" json:"teacher_id"`
	StudentID     *string      `db:"student_id" json:"student_id,omitempty"`
	RoomID        *string      `db:"room_id" json:"room_id,omitempty"`
	Status        LessonStatus `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// LessonFromSpec converts a spec into an unsaved lesson row.
func LessonFromSpec(spec LessonSpec) Lesson {
	return Lesson{
		CourseID:      spec.CourseID,
		ScheduledDate: spec.ScheduledDate,
		StartTime:     spec.StartTime,
		EndTime:       spec.EndTime,
		TeacherID:     spec.TeacherID,
		StudentID:     spec.StudentID,
		RoomID:        spec.RoomID,
		Status:        LessonStatusScheduled,
	}
}

// LessonKey identifies a lesson for idempotent generation.
// StudentID is empty for shared group and workshop lessons.
type LessonKey struct {
	CourseID  string
	Date      string
	StudentID string
}

// NewLessonKey builds a key from raw lesson fields.
func NewLessonKey(courseID string, date time.Time, studentID *string) LessonKey {
	key := LessonKey{CourseID: courseID, Date: date.Format(DateLayout)}
	if studentID != nil {
		key.StudentID = *studentID
	}
	return key
}
