package progress

import (
	"context"
	"errors"
	"time"

	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/redis"
)

const (
	taskKeyPrefix = "task:"
	taskStateTTL  = 24 * time.Hour
)

// redisTracker mirrors task state into Redis so progress stays visible across
// replicas and restarts. Tracker writes are best effort: a Redis hiccup must
// never fail the batch run it reports on.
type redisTracker struct {
	client *redis.Client
}

// NewRedisTracker creates a Redis-backed task tracker
func NewRedisTracker(client *redis.Client) Tracker {
	return &redisTracker{
		client: client,
	}
}

func (r *redisTracker) Start(ctx context.Context, name string) {
	now := time.Now()
	r.write(ctx, model.TaskState{
		Name:      name,
		Status:    model.TaskRunning,
		Progress:  0,
		StartedAt: &now,
	})
}

func (r *redisTracker) Update(ctx context.Context, name string, percent float64) {
	state, err := r.Snapshot(ctx, name)
	if err != nil {
		state = &model.TaskState{Name: name}
	}

	state.Status = model.TaskRunning
	if percent > state.Progress {
		state.Progress = percent
	}
	r.write(ctx, *state)
}

func (r *redisTracker) Finish(ctx context.Context, name string, message string) {
	r.finalize(ctx, name, model.TaskCompleted, 100, message)
}

func (r *redisTracker) Cancel(ctx context.Context, name string) {
	r.finalize(ctx, name, model.TaskCanceled, -1, "")
}

func (r *redisTracker) Fail(ctx context.Context, name string, message string) {
	r.finalize(ctx, name, model.TaskFailed, -1, message)
}

func (r *redisTracker) Snapshot(ctx context.Context, name string) (*model.TaskState, error) {
	var state model.TaskState
	err := r.client.Get(ctx, taskKeyPrefix+name, &state)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, ErrUnknownTask
		}
		return nil, err
	}

	return &state, nil
}

func (r *redisTracker) finalize(ctx context.Context, name string, status model.TaskStatus, percent float64, message string) {
	state, err := r.Snapshot(ctx, name)
	if err != nil {
		state = &model.TaskState{Name: name}
	}

	now := time.Now()
	state.Status = status
	state.Message = message
	state.FinishedAt = &now
	if percent >= 0 {
		state.Progress = percent
	}
	r.write(ctx, *state)
}

func (r *redisTracker) write(ctx context.Context, state model.TaskState) {
	err := r.client.Set(ctx, taskKeyPrefix+state.Name, state, taskStateTTL)
	if err != nil {
		logger.Error(err, "failed to record task state in Redis")
	}
}
