package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/music-school-api/internal/dto"
	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/internal/service"
	"github.com/noah-isme/music-school-api/internal/worker"
	appErrors "github.com/noah-isme/music-school-api/pkg/errors"
	"github.com/noah-isme/music-school-api/pkg/jobs"
	"github.com/noah-isme/music-school-api/pkg/response"
)

type lessonGenerator interface {
	GenerateForCourse(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.GenerateLessonsResponse, error)
	GenerateBulk(ctx context.Context, req dto.GenerateBulkRequest) (*dto.GenerateBulkResponse, error)
	Preview(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.LessonPreviewResponse, error)
	ExportPreview(ctx context.Context, query dto.PreviewExportQuery) (*service.PreviewFile, error)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// LessonGenerationHandler exposes lesson generation endpoints.
type LessonGenerationHandler struct {
	service   lessonGenerator
	queue     jobEnqueuer
	metrics   *service.MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	daysAhead int
	now       func() time.Time
}

// NewLessonGenerationHandler constructs the handler. daysAhead is the default
// window of manually queued bulk runs.
func NewLessonGenerationHandler(svc *service.LessonGenerationService, queue *jobs.Queue, metrics *service.MetricsService, logger *zap.Logger, daysAhead int) *LessonGenerationHandler {
	h := newLessonGenerationHandler(svc, nil, metrics, logger, daysAhead)
	if queue != nil {
		h.queue = queue
	}
	return h
}

func newLessonGenerationHandler(svc lessonGenerator, queue jobEnqueuer, metrics *service.MetricsService, logger *zap.Logger, daysAhead int) *LessonGenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if daysAhead <= 0 {
		daysAhead = 30
	}
	return &LessonGenerationHandler{
		service:   svc,
		queue:     queue,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		daysAhead: daysAhead,
		now:       time.Now,
	}
}

// Generate godoc
// @Summary Generate lessons for one course
// @Description Creates the missing lessons of a course in an inclusive date range. Existing lessons are counted as skipped.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.GenerateLessonsRequest true "Generation window"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/generate [post]
func (h *LessonGenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.service.GenerateForCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GenerateBulk godoc
// @Summary Generate lessons for all active courses
// @Description Per-course failures are reported in the summary and never fail the request. A cancelled run returns the partial summary with meta.cancelled set.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.GenerateBulkRequest true "Generation window"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons/generate-bulk [post]
func (h *LessonGenerationHandler) GenerateBulk(c *gin.Context) {
	var req dto.GenerateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk generation payload"))
		return
	}
	result, err := h.service.GenerateBulk(c.Request.Context(), req)
	if err != nil {
		if result == nil {
			response.Error(c, err)
			return
		}
		// Cancelled mid-run: courses already written are still reported.
		response.OK(c, result, map[string]interface{}{"cancelled": true, "error": err.Error()})
		return
	}
	response.OK(c, result)
}

// Preview godoc
// @Summary Preview lessons without writing them
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.GenerateLessonsRequest true "Preview window"
// @Success 200 {object} response.Envelope
// @Router /lessons/preview [post]
func (h *LessonGenerationHandler) Preview(c *gin.Context) {
	var req dto.GenerateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, map[string]interface{}{
		"newCount":      result.NewCount,
		"existingCount": result.ExistingCount,
	})
}

// ExportPreview godoc
// @Summary Download a lesson preview as CSV or PDF
// @Tags Lessons
// @Produce text/csv
// @Produce application/pdf
// @Param courseId query string true "Course ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Param skipHolidays query bool false "Drop dates inside holidays"
// @Success 200 {file} file
// @Router /lessons/preview/export [get]
func (h *LessonGenerationHandler) ExportPreview(c *gin.Context) {
	var query dto.PreviewExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.ExportPreview(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// RunBulk godoc
// @Summary Queue a rolling bulk generation run
// @Description Enqueues the same job the daily trigger runs. The body is optional.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.GenerationJobRequest false "Window override"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /lessons/generate-bulk/run [post]
func (h *LessonGenerationHandler) RunBulk(c *gin.Context) {
	var req dto.GenerationJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}

	start := h.now()
	if req.StartDate != "" {
		parsed, err := time.Parse(models.DateLayout, req.StartDate)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "startDate must be YYYY-MM-DD"))
			return
		}
		start = parsed
	}
	daysAhead := req.DaysAhead
	if daysAhead == 0 {
		daysAhead = h.daysAhead
	}

	if h.queue == nil {
		response.Error(c, appErrors.ErrQueueUnavailable)
		return
	}
	job := worker.NewBulkJob(start, daysAhead, req.SkipHolidays)
	if err := h.queue.TryEnqueue(job); err != nil {
		h.metrics.RecordJobRejected()
		response.Error(c, appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "generation queue is busy, try again later"))
		return
	}

	payload := job.Payload.(dto.GenerateBulkRequest)
	requestedBy := requesterID(c)
	h.logger.Info("bulk generation queued",
		zap.String("job_id", job.ID),
		zap.String("requested_by", requestedBy),
		zap.String("start_date", payload.StartDate),
		zap.String("end_date", payload.EndDate),
	)
	response.Accepted(c, dto.GenerationJobResponse{
		JobID:       job.ID,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		RequestedBy: requestedBy,
		QueuedAt:    time.Now().UTC(),
	})
}
