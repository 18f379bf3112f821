package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/music-school-api/internal/models"
)

// LessonRepository persists generated lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

type lessonKeyRow struct {
	CourseID      string    `db:"course_id"`
	ScheduledDate time.Time `db:"scheduled_date"`
	StudentID     *string   `db:"student_id"`
}

// ListKeys returns the keys of lessons already stored for the course in [start, end].
func (r *LessonRepository) ListKeys(ctx context.Context, exec sqlx.ExtContext, courseID string, start, end time.Time) (map[models.LessonKey]struct{}, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT course_id, scheduled_date, student_id FROM lessons
WHERE course_id = ? AND scheduled_date BETWEEN ? AND ?`)

	var rows []lessonKeyRow
	if err := sqlx.SelectContext(ctx, target, &rows, query, courseID, dateArg(start), dateArg(end)); err != nil {
		return nil, fmt.Errorf("list lesson keys: %w", err)
	}

	keys := make(map[models.LessonKey]struct{}, len(rows))
	for _, row := range rows {
		keys[models.NewLessonKey(row.CourseID, row.ScheduledDate, row.StudentID)] = struct{}{}
	}
	return keys, nil
}

// InsertIfAbsent stores the lesson unless one with the same key exists.
// It reports whether a row was written.
func (r *LessonRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) (bool, error) {
	target := r.exec(exec)
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	query := target.Rebind(`INSERT INTO lessons (id, course_id, scheduled_date, start_time, end_time, teacher_id, student_id, room_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`)

	result, err := target.ExecContext(ctx, query,
		lesson.ID,
		lesson.CourseID,
		dateArg(lesson.ScheduledDate),
		lesson.StartTime,
		lesson.EndTime,
		lesson.TeacherID,
		lesson.StudentID,
		lesson.RoomID,
		lesson.Status,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert lesson: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert lesson rows affected: %w", err)
	}
	return affected > 0, nil
}
