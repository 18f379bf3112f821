package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/internal/recurrence"
	"github.com/noah-isme/music-school-api/internal/service"
	"github.com/noah-isme/music-school-api/pkg/jobs"
)

// StateStore persists the daily trigger state between polls.
type StateStore interface {
	Load(ctx context.Context) (models.ScheduleState, error)
	Save(ctx context.Context, state models.ScheduleState) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// MemoryStateStore keeps the trigger state in process. Used when Redis is disabled.
type MemoryStateStore struct {
	mu    sync.Mutex
	state models.ScheduleState
}

// Load returns the current state.
func (m *MemoryStateStore) Load(context.Context) (models.ScheduleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

// Save replaces the current state.
func (m *MemoryStateStore) Save(_ context.Context, state models.ScheduleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

// DailyConfig configures the daily trigger.
type DailyConfig struct {
	RunAt        string
	DaysAhead    int
	PollInterval time.Duration
	SkipHolidays bool
}

// DailyGenerationWorker enqueues one rolling bulk generation per day.
type DailyGenerationWorker struct {
	store   StateStore
	queue   jobEnqueuer
	metrics *service.MetricsService
	logger  *zap.Logger

	runAt        time.Duration
	daysAhead    int
	interval     time.Duration
	skipHolidays bool
	now          func() time.Time

	wg sync.WaitGroup
}

// NewDailyGenerationWorker validates cfg and constructs the worker.
func NewDailyGenerationWorker(store StateStore, queue jobEnqueuer, metrics *service.MetricsService, logger *zap.Logger, cfg DailyConfig) (*DailyGenerationWorker, error) {
	runAt, err := recurrence.ParseClock(cfg.RunAt)
	if err != nil {
		return nil, fmt.Errorf("invalid generation run time %q: %w", cfg.RunAt, err)
	}
	if store == nil {
		store = &MemoryStateStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DaysAhead <= 0 {
		cfg.DaysAhead = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	return &DailyGenerationWorker{
		store:        store,
		queue:        queue,
		metrics:      metrics,
		logger:       logger.With(zap.String("component", "daily_generation")),
		runAt:        runAt,
		daysAhead:    cfg.DaysAhead,
		interval:     cfg.PollInterval,
		skipHolidays: cfg.SkipHolidays,
		now:          time.Now,
	}, nil
}

// Start polls immediately and then on every interval until ctx is done.
func (w *DailyGenerationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()
		w.tickAndLog(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.tickAndLog(ctx)
			}
		}
	}()
	w.logger.Info("daily generation worker started", zap.Duration("poll_interval", w.interval), zap.Int("days_ahead", w.daysAhead))
}

// Wait blocks until the polling goroutine has returned.
func (w *DailyGenerationWorker) Wait() {
	w.wg.Wait()
}

func (w *DailyGenerationWorker) tickAndLog(ctx context.Context) {
	if _, err := w.Tick(ctx); err != nil {
		w.logger.Warn("daily generation poll failed", zap.Error(err))
	}
}

// Tick runs one poll and reports whether a job was enqueued. A job the queue
// rejects leaves the day unmarked so the next tick tries again.
func (w *DailyGenerationWorker) Tick(ctx context.Context) (bool, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load schedule state: %w", err)
	}

	now := w.now()
	next, due := Poll(state, now, w.runAt)
	var enqueueErr error
	if due {
		skip := w.skipHolidays
		job := NewBulkJob(now, w.daysAhead, &skip)
		if enqueueErr = w.queue.TryEnqueue(job); enqueueErr != nil {
			w.metrics.RecordJobRejected()
			next.HasRunToday = false
			enqueueErr = fmt.Errorf("enqueue daily generation: %w", enqueueErr)
		} else {
			w.logger.Info("daily generation enqueued", zap.String("job_id", job.ID), zap.String("date", next.LastRunDate))
		}
	}

	if next != state {
		if err := w.store.Save(ctx, next); err != nil {
			return due && enqueueErr == nil, fmt.Errorf("save schedule state: %w", err)
		}
	}
	return due && enqueueErr == nil, enqueueErr
}
