package progress

import (
	"context"
	"sync"
	"time"

	"deovr-bridge/pkg/model"
)

// memoryTracker keeps task state in process memory
type memoryTracker struct {
	mu    sync.RWMutex
	tasks map[string]model.TaskState
}

// NewMemoryTracker creates an in-memory task tracker
func NewMemoryTracker() Tracker {
	return &memoryTracker{
		tasks: make(map[string]model.TaskState),
	}
}

func (m *memoryTracker) Start(ctx context.Context, name string) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[name] = model.TaskState{
		Name:      name,
		Status:    model.TaskRunning,
		Progress:  0,
		StartedAt: &now,
	}
}

func (m *memoryTracker) Update(ctx context.Context, name string, percent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.tasks[name]
	state.Name = name
	state.Status = model.TaskRunning
	if percent > state.Progress {
		state.Progress = percent
	}
	m.tasks[name] = state
}

func (m *memoryTracker) Finish(ctx context.Context, name string, message string) {
	m.finalize(name, model.TaskCompleted, 100, message)
}

func (m *memoryTracker) Cancel(ctx context.Context, name string) {
	m.finalize(name, model.TaskCanceled, -1, "")
}

func (m *memoryTracker) Fail(ctx context.Context, name string, message string) {
	m.finalize(name, model.TaskFailed, -1, message)
}

func (m *memoryTracker) Snapshot(ctx context.Context, name string) (*model.TaskState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.tasks[name]
	if !ok {
		return nil, ErrUnknownTask
	}
	return &state, nil
}

// finalize closes out a run; a negative percent keeps the last reported value
func (m *memoryTracker) finalize(name string, status model.TaskStatus, percent float64, message string) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.tasks[name]
	state.Name = name
	state.Status = status
	state.Message = message
	state.FinishedAt = &now
	if percent >= 0 {
		state.Progress = percent
	}
	m.tasks[name] = state
}
