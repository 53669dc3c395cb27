package progress

import (
	"context"
	"testing"

	"deovr-bridge/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTrackerLifecycle(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx, model.TaskCleanup)
	assert.ErrorIs(t, err, ErrUnknownTask)

	tracker.Start(ctx, model.TaskCleanup)
	tracker.Update(ctx, model.TaskCleanup, 80)
	tracker.Update(ctx, model.TaskCleanup, 20)

	state, err := tracker.Snapshot(ctx, model.TaskCleanup)
	require.NoError(t, err)
	assert.Equal(t, model.TaskRunning, state.Status)
	assert.Equal(t, float64(80), state.Progress, "progress must be monotonically non-decreasing")

	tracker.Fail(ctx, model.TaskCleanup, "settings unavailable")
	state, err = tracker.Snapshot(ctx, model.TaskCleanup)
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, state.Status)
	assert.Equal(t, "settings unavailable", state.Message)
}
