package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/music-school-api/internal/models"
	appErrors "github.com/noah-isme/music-school-api/pkg/errors"
)

const courseColumns = `id, name, teacher_id, room_id, course_type, day_of_week, start_time, end_time,
frequency, week_parity, start_date, end_date, status, created_at, updated_at`

const enrollmentColumns = `course_id, student_id, start_date, end_date`

// CourseRepository reads course blueprints together with their enrollments.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindScheduleByID returns the course and all of its non-cancelled enrollments.
func (r *CourseRepository) FindScheduleByID(ctx context.Context, courseID string) (*models.CourseSchedule, error) {
	query := r.db.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE id = ?`)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("get course %s: %w", courseID, err)
	}

	enrollmentsQuery := r.db.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments
WHERE course_id = ? AND status <> 'CANCELLED' ORDER BY student_id ASC`)
	var enrollments []models.EnrollmentWindow
	if err := r.db.SelectContext(ctx, &enrollments, enrollmentsQuery, courseID); err != nil {
		return nil, fmt.Errorf("list enrollments for course %s: %w", courseID, err)
	}

	return &models.CourseSchedule{Course: course, Enrollments: enrollments}, nil
}

// ListActiveSchedules returns active courses whose validity overlaps [start, end].
func (r *CourseRepository) ListActiveSchedules(ctx context.Context, start, end time.Time) ([]models.CourseSchedule, error) {
	query := r.db.Rebind(`SELECT ` + courseColumns + ` FROM courses
WHERE status = 'ACTIVE' AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
ORDER BY id ASC`)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, dateArg(end), dateArg(start)); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	if len(courses) == 0 {
		return []models.CourseSchedule{}, nil
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	inQuery, args, err := sqlx.In(`SELECT `+enrollmentColumns+` FROM enrollments
WHERE course_id IN (?) AND status <> 'CANCELLED' ORDER BY course_id ASC, student_id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build enrollment query: %w", err)
	}
	var enrollments []models.EnrollmentWindow
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(inQuery), args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	byCourse := make(map[string][]models.EnrollmentWindow, len(courses))
	for _, e := range enrollments {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e)
	}

	schedules := make([]models.CourseSchedule, len(courses))
	for i, c := range courses {
		schedules[i] = models.CourseSchedule{Course: c, Enrollments: byCourse[c.ID]}
	}
	return schedules, nil
}
