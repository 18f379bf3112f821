package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/music-school-api/internal/dto"
	"github.com/noah-isme/music-school-api/pkg/jobs"
)

type bulkGeneratorStub struct {
	req        dto.GenerateBulkRequest
	resp       *dto.GenerateBulkResponse
	err        error
	refreshErr error
	calls      []string
}

func (s *bulkGeneratorStub) RefreshHolidays(context.Context) error {
	s.calls = append(s.calls, "refresh")
	return s.refreshErr
}

func (s *bulkGeneratorStub) GenerateBulk(_ context.Context, req dto.GenerateBulkRequest) (*dto.GenerateBulkResponse, error) {
	s.calls = append(s.calls, "generate")
	s.req = req
	return s.resp, s.err
}

func TestNewBulkJobWindow(t *testing.T) {
	job := NewBulkJob(time.Date(2026, time.December, 20, 17, 45, 0, 0, time.UTC), 14, nil)

	assert.NotEmpty(t, job.ID)
	req := job.Payload.(dto.GenerateBulkRequest)
	assert.Equal(t, "2026-12-20", req.StartDate)
	assert.Equal(t, "2027-01-03", req.EndDate)
	assert.Nil(t, req.SkipHolidays)
}

func TestGenerationJobHandler(t *testing.T) {
	generator := &bulkGeneratorStub{resp: &dto.GenerateBulkResponse{CoursesProcessed: 2, LessonsCreated: 10}}
	handler := NewGenerationJobHandler(generator, nil)

	job := NewBulkJob(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), 7, nil)
	require.NoError(t, handler.Handle(context.Background(), job))
	assert.Equal(t, "2026-03-01", generator.req.StartDate)
	assert.Equal(t, "2026-03-08", generator.req.EndDate)
	assert.Equal(t, []string{"refresh", "generate"}, generator.calls)
}

func TestGenerationJobHandlerRunsWhenRefreshFails(t *testing.T) {
	generator := &bulkGeneratorStub{
		resp:       &dto.GenerateBulkResponse{CoursesProcessed: 1},
		refreshErr: errors.New("redis down"),
	}
	handler := NewGenerationJobHandler(generator, nil)

	require.NoError(t, handler.Handle(context.Background(), NewBulkJob(time.Now(), 7, nil)))
	assert.Equal(t, []string{"refresh", "generate"}, generator.calls)
}

func TestGenerationJobHandlerFailures(t *testing.T) {
	generator := &bulkGeneratorStub{err: errors.New("listing failed")}
	handler := NewGenerationJobHandler(generator, nil)

	err := handler.Handle(context.Background(), NewBulkJob(time.Now(), 7, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing failed")

	err = handler.Handle(context.Background(), jobs.Job{ID: "x", Payload: "garbage"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload")
}
