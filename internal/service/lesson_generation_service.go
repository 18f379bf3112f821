package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/music-school-api/internal/dto"
	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/internal/recurrence"
	appErrors "github.com/noah-isme/music-school-api/pkg/errors"
)

const (
	defaultMaxRangeDays = 366
	holidayCachePattern = "holidays:*"
)

type courseScheduleReader interface {
	FindScheduleByID(ctx context.Context, courseID string) (*models.CourseSchedule, error)
	ListActiveSchedules(ctx context.Context, start, end time.Time) ([]models.CourseSchedule, error)
}

type holidayReader interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.HolidayRange, error)
}

type lessonWriter interface {
	ListKeys(ctx context.Context, exec sqlx.ExtContext, courseID string, start, end time.Time) (map[models.LessonKey]struct{}, error)
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) (bool, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// LessonGenerationConfig governs generation behaviour.
type LessonGenerationConfig struct {
	Workers      int
	SkipHolidays bool
	MaxRangeDays int
}

// LessonGenerationService turns course blueprints into persisted lessons.
type LessonGenerationService struct {
	courses   courseScheduleReader
	holidays  holidayReader
	lessons   lessonWriter
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LessonGenerationConfig
}

// NewLessonGenerationService wires generation dependencies. A nil tx runs
// each course's writes without a transaction.
func NewLessonGenerationService(
	courses courseScheduleReader,
	holidays holidayReader,
	lessons lessonWriter,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg LessonGenerationConfig,
) *LessonGenerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = defaultMaxRangeDays
	}
	return &LessonGenerationService{
		courses:   courses,
		holidays:  holidays,
		lessons:   lessons,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// GenerateForCourse creates the missing lessons of one course in the requested range.
func (s *LessonGenerationService) GenerateForCourse(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.GenerateLessonsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson generation payload")
	}
	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	defer func() { s.metrics.ObserveGenerationRun(GenerationModeSingle, time.Since(began)) }()

	schedule, err := s.loadSchedule(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.loadHolidays(ctx, s.skipHolidays(req.SkipHolidays), start, end)
	if err != nil {
		return nil, err
	}

	counts, dates, err := s.generateCourse(ctx, *schedule, start, end, holidays)
	if err != nil {
		s.metrics.RecordGenerationFailure()
		return nil, err
	}

	s.logger.Info("lessons generated",
		zap.String("course_id", schedule.ID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("created", counts.Created),
		zap.Int("skipped", counts.Skipped),
	)

	return &dto.GenerateLessonsResponse{
		CourseID: schedule.ID,
		Created:  counts.Created,
		Skipped:  counts.Skipped,
		Dates:    formatDates(dates),
	}, nil
}

// GenerateBulk generates lessons for every active course. A failing course is
// recorded in the summary and never stops the others. Only a failure to list
// courses is returned as an error. When ctx is cancelled no further courses
// are started and the partial summary is returned with the context error.
// A course already running finishes under a context that ignores the cancel.
func (s *LessonGenerationService) GenerateBulk(ctx context.Context, req dto.GenerateBulkRequest) (*dto.GenerateBulkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk generation payload")
	}
	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	defer func() { s.metrics.ObserveGenerationRun(GenerationModeBulk, time.Since(began)) }()

	schedules, err := s.courses.ListActiveSchedules(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active courses")
	}
	holidays, err := s.loadHolidays(ctx, s.skipHolidays(req.SkipHolidays), start, end)
	if err != nil {
		return nil, err
	}

	summary := &dto.GenerateBulkResponse{Failures: []models.GenerationFailure{}}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, schedule := range schedules {
		if ctx.Err() != nil {
			break
		}
		schedule := schedule
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			counts, _, err := s.generateCourse(context.WithoutCancel(ctx), schedule, start, end, holidays)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				appErr := appErrors.FromError(err)
				summary.CoursesFailed++
				summary.Failures = append(summary.Failures, models.GenerationFailure{
					CourseID: schedule.ID,
					Code:     appErr.Code,
					Message:  err.Error(),
				})
				s.metrics.RecordGenerationFailure()
				s.logger.Warn("course generation failed", zap.String("course_id", schedule.ID), zap.Error(err))
				return nil
			}
			summary.CoursesProcessed++
			summary.LessonsCreated += counts.Created
			summary.LessonsSkipped += counts.Skipped
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].CourseID < summary.Failures[j].CourseID
	})

	s.logger.Info("bulk lesson generation finished",
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("courses", len(schedules)),
		zap.Int("processed", summary.CoursesProcessed),
		zap.Int("failed", summary.CoursesFailed),
		zap.Int("created", summary.LessonsCreated),
		zap.Int("skipped", summary.LessonsSkipped),
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// RefreshHolidays drops cached holiday lookups so the next run reads the
// holidays table again.
func (s *LessonGenerationService) RefreshHolidays(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, holidayCachePattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh holiday cache")
	}
	return nil
}

// Preview enumerates and materializes lessons without writing, flagging the
// ones that already exist.
func (s *LessonGenerationService) Preview(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.LessonPreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson preview payload")
	}
	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	schedule, err := s.loadSchedule(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.loadHolidays(ctx, s.skipHolidays(req.SkipHolidays), start, end)
	if err != nil {
		return nil, err
	}

	dates, err := recurrence.Enumerate(*schedule, start, end, holidays)
	if err != nil {
		return nil, scheduleError(err)
	}
	specs := recurrence.Materialize(*schedule, dates)

	existing, err := s.lessons.ListKeys(ctx, nil, schedule.ID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing lessons")
	}

	resp := &dto.LessonPreviewResponse{
		CourseID:   schedule.ID,
		CourseName: schedule.Name,
		Dates:      formatDates(dates),
		Lessons:    make([]dto.LessonPreviewItem, 0, len(specs)),
	}
	for _, spec := range specs {
		_, exists := existing[spec.Key()]
		if exists {
			resp.ExistingCount++
		} else {
			resp.NewCount++
		}
		resp.Lessons = append(resp.Lessons, dto.LessonPreviewItem{
			ScheduledDate: spec.ScheduledDate.Format(models.DateLayout),
			StartTime:     spec.StartTime,
			EndTime:       spec.EndTime,
			TeacherID:     spec.TeacherID,
			StudentID:     spec.StudentID,
			RoomID:        spec.RoomID,
			Exists:        exists,
		})
	}
	return resp, nil
}

func (s *LessonGenerationService) generateCourse(ctx context.Context, schedule models.CourseSchedule, start, end time.Time, holidays []models.HolidayRange) (models.GenerationCounts, []time.Time, error) {
	dates, err := recurrence.Enumerate(schedule, start, end, holidays)
	if err != nil {
		return models.GenerationCounts{}, nil, scheduleError(err)
	}
	specs := recurrence.Materialize(schedule, dates)
	if len(specs) == 0 {
		return models.GenerationCounts{}, dates, nil
	}

	var counts models.GenerationCounts
	err = s.withTx(ctx, func(exec sqlx.ExtContext) error {
		counts = models.GenerationCounts{}
		existing, err := s.lessons.ListKeys(ctx, exec, schedule.ID, start, end)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = make(map[models.LessonKey]struct{}, len(specs))
		}
		for _, spec := range specs {
			key := spec.Key()
			if _, ok := existing[key]; ok {
				counts.Skipped++
				continue
			}
			lesson := models.LessonFromSpec(spec)
			created, err := s.lessons.InsertIfAbsent(ctx, exec, &lesson)
			if err != nil {
				return err
			}
			if created {
				counts.Created++
			} else {
				counts.Skipped++
			}
			existing[key] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return models.GenerationCounts{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lessons")
	}

	s.metrics.RecordGeneration(counts.Created, counts.Skipped)
	return counts, dates, nil
}

func (s *LessonGenerationService) withTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) (err error) {
	if s.tx == nil {
		return fn(nil)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *LessonGenerationService) loadSchedule(ctx context.Context, courseID string) (*models.CourseSchedule, error) {
	schedule, err := s.courses.FindScheduleByID(ctx, courseID)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return schedule, nil
}

func (s *LessonGenerationService) loadHolidays(ctx context.Context, skip bool, start, end time.Time) ([]models.HolidayRange, error) {
	if !skip {
		return nil, nil
	}
	key := fmt.Sprintf("holidays:%s:%s", start.Format(models.DateLayout), end.Format(models.DateLayout))
	holidays, err := Remember(ctx, s.cache, key, func(ctx context.Context) ([]models.HolidayRange, error) {
		return s.holidays.ListOverlapping(ctx, start, end)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	return holidays, nil
}

func (s *LessonGenerationService) skipHolidays(override *bool) bool {
	if override != nil {
		return *override
	}
	return s.cfg.SkipHolidays
}

func (s *LessonGenerationService) parseRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "endDate must be YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.cfg.MaxRangeDays {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range must not exceed %d days", s.cfg.MaxRangeDays))
	}
	return start, end, nil
}

func scheduleError(err error) error {
	var verr *recurrence.ValidationError
	if errors.As(err, &verr) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course schedule is invalid")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enumerate lessons")
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(models.DateLayout)
	}
	return out
}
