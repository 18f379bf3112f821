package dto

import (
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// GenerateLessonsRequest asks for lessons of one course over an inclusive date range.
type GenerateLessonsRequest struct {
	CourseID     string `json:"courseId" validate:"required,max=64"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	SkipHolidays *bool  `json:"skipHolidays"`
}

// GenerateBulkRequest asks for lessons of every active course over an inclusive date range.
type GenerateBulkRequest struct {
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	SkipHolidays *bool  `json:"skipHolidays"`
}

// GenerateLessonsResponse reports the outcome of a single-course run.
type GenerateLessonsResponse struct {
	CourseID string   `json:"courseId"`
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Dates    []string `json:"dates"`
}

// GenerateBulkResponse summarises a bulk run. CoursesProcessed counts courses
// that completed; failed courses are listed in Failures instead.
type GenerateBulkResponse struct {
	CoursesProcessed int                        `json:"coursesProcessed"`
	CoursesFailed    int                        `json:"coursesFailed"`
	LessonsCreated   int                        `json:"lessonsCreated"`
	LessonsSkipped   int                        `json:"lessonsSkipped"`
	Failures         []models.GenerationFailure `json:"failures"`
}

// LessonPreviewItem is a lesson generation would produce.
type LessonPreviewItem struct {
	ScheduledDate string  `json:"scheduledDate"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	TeacherID     string  `json:"teacherId"`
	StudentID     *string `json:"studentId,omitempty"`
	RoomID        *string `json:"roomId,omitempty"`
	Exists        bool    `json:"exists"`
}

// LessonPreviewResponse lists the lessons of a dry run.
type LessonPreviewResponse struct {
	CourseID      string              `json:"courseId"`
	CourseName    string              `json:"courseName"`
	Dates         []string            `json:"dates"`
	Lessons       []LessonPreviewItem `json:"lessons"`
	NewCount      int                 `json:"newCount"`
	ExistingCount int                 `json:"existingCount"`
}

// PreviewExportQuery is the query string of the preview export endpoint.
type PreviewExportQuery struct {
	CourseID     string `form:"courseId" validate:"required,max=64"`
	StartDate    string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `form:"endDate" validate:"required,datetime=2006-01-02"`
	Format       string `form:"format" validate:"omitempty,oneof=csv pdf"`
	SkipHolidays *bool  `form:"skipHolidays"`
}

// GenerationJobRequest optionally overrides the window of a queued bulk run.
type GenerationJobRequest struct {
	StartDate    string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	DaysAhead    int    `json:"daysAhead" validate:"omitempty,min=1,max=365"`
	SkipHolidays *bool  `json:"skipHolidays"`
}

// GenerationJobResponse acknowledges a queued bulk run.
type GenerationJobResponse struct {
	JobID       string    `json:"jobId"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	QueuedAt    time.Time `json:"queuedAt"`
}
