package models

// GenerationFailure records a course that could not be generated during a bulk run.
type GenerationFailure struct {
	CourseID string `json:"course_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// GenerationCounts is the per-course outcome of a generation run.
type GenerationCounts struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ScheduleState is the persisted state of the daily generation trigger.
// LastRunDate is the YYYY-MM-DD civil day the state describes, empty before
// the first poll. HasRunToday reports whether that day's run was enqueued.
type ScheduleState struct {
	LastRunDate string `json:"last_run_date"`
	HasRunToday bool   `json:"has_run_today"`
}
