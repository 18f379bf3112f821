package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/music-school-api/internal/models"
)

func enroll(students ...string) []models.EnrollmentWindow {
	out := make([]models.EnrollmentWindow, 0, len(students))
	for _, id := range students {
		out = append(out, models.EnrollmentWindow{CourseID: "course-a", StudentID: id})
	}
	return out
}

func TestMaterializeIndividualFansOutPerStudent(t *testing.T) {
	room := "room-3"
	course := tuesdayCourse(models.FrequencyWeekly, models.WeekParityAll, Date(2026, time.January, 1))
	course.RoomID = &room
	course.Enrollments = enroll("s3", "s1", "s2")
	dates := []time.Time{Date(2026, time.January, 6), Date(2026, time.January, 13)}

	specs := Materialize(course, dates)
	require.Len(t, specs, 6)

	perDate := map[string]map[string]bool{}
	for _, spec := range specs {
		require.NotNil(t, spec.StudentID)
		day := spec.ScheduledDate.Format(models.DateLayout)
		if perDate[day] == nil {
			perDate[day] = map[string]bool{}
		}
		perDate[day][*spec.StudentID] = true

		assert.Equal(t, "course-a", spec.CourseID)
		assert.Equal(t, "teacher-1", spec.TeacherID)
		assert.Equal(t, "14:00", spec.StartTime)
		assert.Equal(t, "15:00", spec.EndTime)
		assert.Equal(t, models.LessonStatusScheduled, spec.Status)
		require.NotNil(t, spec.RoomID)
		assert.Equal(t, "room-3", *spec.RoomID)
	}
	assert.Len(t, perDate, 2)
	for _, students := range perDate {
		assert.Len(t, students, 3)
	}
	assert.Equal(t, "s1", *specs[0].StudentID)
}

func TestMaterializeGroupAndWorkshopShareOneLesson(t *testing.T) {
	dates := []time.Time{Date(2026, time.January, 6), Date(2026, time.January, 13)}
	for _, courseType := range []models.CourseType{models.CourseTypeGroup, models.CourseTypeWorkshop} {
		t.Run(string(courseType), func(t *testing.T) {
			course := tuesdayCourse(models.FrequencyWeekly, models.WeekParityAll, Date(2026, time.January, 1))
			course.CourseType = courseType
			course.Enrollments = enroll("s1", "s2", "s3", "s4")

			specs := Materialize(course, dates)
			require.Len(t, specs, 2)
			for _, spec := range specs {
				assert.Nil(t, spec.StudentID)
			}
		})
	}
}

func TestMaterializeHonoursEnrollmentWindows(t *testing.T) {
	joined := Date(2026, time.January, 15)
	left := Date(2026, time.January, 10)
	course := tuesdayCourse(models.FrequencyWeekly, models.WeekParityAll, Date(2026, time.January, 1))
	course.Enrollments = []models.EnrollmentWindow{
		{StudentID: "late", StartDate: &joined},
		{StudentID: "early", EndDate: &left},
		{StudentID: "always"},
	}
	dates := []time.Time{Date(2026, time.January, 6), Date(2026, time.January, 20)}

	specs := Materialize(course, dates)

	keys := make([]models.LessonKey, 0, len(specs))
	for _, spec := range specs {
		keys = append(keys, spec.Key())
	}
	assert.ElementsMatch(t, []models.LessonKey{
		{CourseID: "course-a", Date: "2026-01-06", StudentID: "always"},
		{CourseID: "course-a", Date: "2026-01-06", StudentID: "early"},
		{CourseID: "course-a", Date: "2026-01-20", StudentID: "always"},
		{CourseID: "course-a", Date: "2026-01-20", StudentID: "late"},
	}, keys)
}

func TestMaterializeIndividualWithoutStudents(t *testing.T) {
	course := tuesdayCourse(models.FrequencyWeekly, models.WeekParityAll, Date(2026, time.January, 1))
	specs := Materialize(course, []time.Time{Date(2026, time.January, 6)})
	assert.Empty(t, specs)
}

func TestConcreteScenarioCourseA(t *testing.T) {
	course := tuesdayCourse(models.FrequencyWeekly, models.WeekParityAll, Date(2026, time.January, 1))
	course.Enrollments = enroll("S1", "S2")

	dates, err := Enumerate(course, Date(2026, time.January, 1), Date(2026, time.January, 31), nil)
	require.NoError(t, err)
	specs := Materialize(course, dates)

	assert.Len(t, dates, 4)
	assert.Len(t, specs, 8)
}
