package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/music-school-api/internal/dto"
	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/pkg/jobs"
)

// JobTypeBulkGeneration identifies queued bulk lesson generation runs.
const JobTypeBulkGeneration = "lessons.generate_bulk"

type bulkGenerator interface {
	RefreshHolidays(ctx context.Context) error
	GenerateBulk(ctx context.Context, req dto.GenerateBulkRequest) (*dto.GenerateBulkResponse, error)
}

// NewBulkJob builds a bulk generation job over [start, start+daysAhead].
func NewBulkJob(start time.Time, daysAhead int, skipHolidays *bool) jobs.Job {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeBulkGeneration,
		Payload: dto.GenerateBulkRequest{
			StartDate:    from.Format(models.DateLayout),
			EndDate:      from.AddDate(0, 0, daysAhead).Format(models.DateLayout),
			SkipHolidays: skipHolidays,
		},
	}
}

// GenerationJobHandler runs queued bulk generations.
type GenerationJobHandler struct {
	generator bulkGenerator
	logger    *zap.Logger
}

// NewGenerationJobHandler constructs the handler.
func NewGenerationJobHandler(generator bulkGenerator, logger *zap.Logger) *GenerationJobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationJobHandler{generator: generator, logger: logger}
}

// Handle processes a queue job. Cached holidays are dropped first so the run
// sees holidays added since the last one. Per-course failures are part of the
// summary and do not fail the job.
func (h *GenerationJobHandler) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateBulkRequest)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}

	if err := h.generator.RefreshHolidays(ctx); err != nil {
		h.logger.Warn("holiday cache refresh failed", zap.String("job_id", job.ID), zap.Error(err))
	}

	summary, err := h.generator.GenerateBulk(ctx, req)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	h.logger.Info("scheduled lesson generation finished",
		zap.String("job_id", job.ID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("processed", summary.CoursesProcessed),
		zap.Int("failed", summary.CoursesFailed),
		zap.Int("created", summary.LessonsCreated),
		zap.Int("skipped", summary.LessonsSkipped),
	)
	return nil
}
