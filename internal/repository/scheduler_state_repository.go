package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/music-school-api/internal/models"
)

const (
	fieldLastRunDate = "last_run_date"
	fieldHasRunToday = "has_run_today"
)

// SchedulerStateRepository keeps the daily trigger state in a Redis hash so
// restarts and replicas agree on whether today's run already happened.
type SchedulerStateRepository struct {
	client *redis.Client
	key    string
}

// NewSchedulerStateRepository constructs the repository.
func NewSchedulerStateRepository(client *redis.Client, key string) *SchedulerStateRepository {
	return &SchedulerStateRepository{client: client, key: key}
}

// Load returns the stored state, or the zero state when nothing is stored yet.
func (r *SchedulerStateRepository) Load(ctx context.Context) (models.ScheduleState, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.ScheduleState{}, fmt.Errorf("redis hgetall %s: %w", r.key, err)
	}
	return decodeScheduleState(values), nil
}

// Save overwrites the stored state.
func (r *SchedulerStateRepository) Save(ctx context.Context, state models.ScheduleState) error {
	if err := r.client.HSet(ctx, r.key, encodeScheduleState(state)).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", r.key, err)
	}
	return nil
}

func encodeScheduleState(state models.ScheduleState) map[string]interface{} {
	return map[string]interface{}{
		fieldLastRunDate: state.LastRunDate,
		fieldHasRunToday: strconv.FormatBool(state.HasRunToday),
	}
}

func decodeScheduleState(values map[string]string) models.ScheduleState {
	hasRun, _ := strconv.ParseBool(values[fieldHasRunToday])
	return models.ScheduleState{LastRunDate: values[fieldLastRunDate], HasRunToday: hasRun}
}
