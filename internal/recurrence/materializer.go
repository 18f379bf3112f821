package recurrence

import (
	"sort"
	"time"

	"github.com/noah-isme/music-school-api/internal/models"
)

// Materialize turns enumerated dates into lesson specs.
//
// Individual courses produce one spec per date and enrolled student, limited
// to students whose enrollment window covers the date. Group and workshop
// courses produce a single shared spec per date.
func Materialize(schedule models.CourseSchedule, dates []time.Time) []models.LessonSpec {
	if schedule.CourseType != models.CourseTypeIndividual {
		specs := make([]models.LessonSpec, 0, len(dates))
		for _, date := range dates {
			specs = append(specs, newSpec(schedule, date, nil))
		}
		return specs
	}

	students := schedule.EnrolledStudentIDs()
	sort.Strings(students)
	windows := make(map[string][]models.EnrollmentWindow, len(students))
	for _, e := range schedule.Enrollments {
		windows[e.StudentID] = append(windows[e.StudentID], e)
	}

	specs := make([]models.LessonSpec, 0, len(dates)*len(students))
	for _, date := range dates {
		day := DateOf(date)
		for _, studentID := range students {
			if !enrolledOn(windows[studentID], day) {
				continue
			}
			id := studentID
			specs = append(specs, newSpec(schedule, date, &id))
		}
	}
	return specs
}

func enrolledOn(windows []models.EnrollmentWindow, day time.Time) bool {
	for _, w := range windows {
		if w.Covers(day) {
			return true
		}
	}
	return false
}

func newSpec(schedule models.CourseSchedule, date time.Time, studentID *string) models.LessonSpec {
	var roomID *string
	if schedule.RoomID != nil {
		room := *schedule.RoomID
		roomID = &room
	}
	return models.LessonSpec{
		CourseID:      schedule.ID,
		ScheduledDate: DateOf(date),
		StartTime:     schedule.StartTime,
		EndTime:       schedule.EndTime,
		TeacherID:     schedule.TeacherID,
		StudentID:     studentID,
		RoomID:        roomID,
		Status:        models.LessonStatusScheduled,
	}
}
