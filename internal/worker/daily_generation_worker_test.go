package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/music-school-api/internal/dto"
	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/pkg/jobs"
)

type queueStub struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *queueStub) TryEnqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queueStub) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (models.ScheduleState, error) {
	return models.ScheduleState{}, errors.New("redis down")
}

func (failingStore) Save(context.Context, models.ScheduleState) error { return nil }

func newTestWorker(t *testing.T, store StateStore, queue jobEnqueuer, now time.Time) *DailyGenerationWorker {
	t.Helper()
	w, err := NewDailyGenerationWorker(store, queue, nil, nil, DailyConfig{RunAt: "02:00", DaysAhead: 30, SkipHolidays: true})
	require.NoError(t, err)
	w.now = func() time.Time { return now }
	return w
}

func TestNewDailyGenerationWorkerRejectsBadRunAt(t *testing.T) {
	_, err := NewDailyGenerationWorker(nil, &queueStub{}, nil, nil, DailyConfig{RunAt: "2am"})
	require.Error(t, err)
}

func TestTickEnqueuesOncePerDay(t *testing.T) {
	store := &MemoryStateStore{}
	queue := &queueStub{}
	w := newTestWorker(t, store, queue, at(10, 3, 0))

	enqueued, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, enqueued)

	enqueued, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, enqueued)

	require.Equal(t, 1, queue.count())
	job := queue.jobs[0]
	assert.Equal(t, JobTypeBulkGeneration, job.Type)
	req := job.Payload.(dto.GenerateBulkRequest)
	assert.Equal(t, "2026-03-10", req.StartDate)
	assert.Equal(t, "2026-04-09", req.EndDate)
	require.NotNil(t, req.SkipHolidays)
	assert.True(t, *req.SkipHolidays)

	state, _ := store.Load(context.Background())
	assert.Equal(t, models.ScheduleState{LastRunDate: "2026-03-10", HasRunToday: true}, state)
}

func TestTickBeforeRunTimeOnlyRecordsDay(t *testing.T) {
	store := &MemoryStateStore{}
	queue := &queueStub{}
	w := newTestWorker(t, store, queue, at(10, 1, 0))

	enqueued, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, enqueued)
	assert.Zero(t, queue.count())

	state, _ := store.Load(context.Background())
	assert.Equal(t, "2026-03-10", state.LastRunDate)
	assert.False(t, state.HasRunToday)
}

func TestTickRetriesAfterRejectedJob(t *testing.T) {
	store := &MemoryStateStore{}
	queue := &queueStub{err: jobs.ErrQueueFull}
	w := newTestWorker(t, store, queue, at(10, 3, 0))

	enqueued, err := w.Tick(context.Background())
	require.ErrorIs(t, err, jobs.ErrQueueFull)
	assert.False(t, enqueued)

	queue.err = nil
	enqueued, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, enqueued)
	assert.Equal(t, 1, queue.count())
}

func TestTickPropagatesStoreFailure(t *testing.T) {
	queue := &queueStub{}
	w := newTestWorker(t, failingStore{}, queue, at(10, 3, 0))

	_, err := w.Tick(context.Background())
	require.Error(t, err)
	assert.Zero(t, queue.count())
}

func TestStartPollsUntilCancelled(t *testing.T) {
	queue := &queueStub{}
	w := newTestWorker(t, &MemoryStateStore{}, queue, at(10, 3, 0))
	w.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	require.Eventually(t, func() bool { return queue.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	w.Wait()

	assert.Equal(t, 1, queue.count())
}
