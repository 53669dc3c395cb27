package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/progress"
)

// ErrAlreadyRunning is returned when a task is triggered while a previous run
// of the same task is still active.
var ErrAlreadyRunning = errors.New("task already running")

// Runner owns the lifecycle of the batch tasks: one run per task at a time,
// state published through the progress tracker, cooperative cancellation.
type Runner struct {
	tracker    progress.Tracker
	generation *GenerationService
	cleanup    *CleanupService

	mu      sync.Mutex
	wg      sync.WaitGroup
	running map[string]context.CancelFunc
}

// NewRunner creates a task runner
func NewRunner(tracker progress.Tracker, generation *GenerationService, cleanup *CleanupService) *Runner {
	return &Runner{
		tracker:    tracker,
		generation: generation,
		cleanup:    cleanup,
		running:    make(map[string]context.CancelFunc),
	}
}

// TriggerGeneration starts a preview generation run in the background
func (r *Runner) TriggerGeneration(force bool) error {
	return r.trigger(model.TaskGeneration, func(ctx context.Context, report progress.Reporter) (string, error) {
		result, err := r.generation.Run(ctx, force, report)
		summary := fmt.Sprintf("total %d, generated %d, skipped %d, failed %d",
			result.Total, result.Succeeded, result.Skipped, result.Failed)
		return summary, err
	})
}

// TriggerCleanup starts a cache reconciliation run in the background
func (r *Runner) TriggerCleanup() error {
	return r.trigger(model.TaskCleanup, func(ctx context.Context, report progress.Reporter) (string, error) {
		result, err := r.cleanup.Run(ctx, report)
		summary := fmt.Sprintf("valid %d, orphaned %d, malformed %d, deleted %d, failed %d, freed %d bytes",
			result.Valid, result.Orphaned, result.Malformed, result.Deleted, result.DeleteFailed, result.BytesFreed)
		return summary, err
	})
}

// Status returns the externally visible state of a task
func (r *Runner) Status(ctx context.Context, name string) (*model.TaskState, error) {
	return r.tracker.Snapshot(ctx, name)
}

// Cancel requests cancellation of a running task; it reports whether a run
// was active
func (r *Runner) Cancel(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancel, ok := r.running[name]
	if ok {
		cancel()
	}
	return ok
}

// Shutdown cancels every running task and waits for them to stop
func (r *Runner) Shutdown() {
	r.mu.Lock()
	for _, cancel := range r.running {
		cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// trigger starts one background run of the named task unless it is already active
func (r *Runner) trigger(name string, run func(ctx context.Context, report progress.Reporter) (string, error)) error {
	r.mu.Lock()
	if _, active := r.running[name]; active {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.running[name] = cancel
	r.mu.Unlock()

	r.tracker.Start(ctx, name)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.running, name)
			r.mu.Unlock()
			cancel()
		}()

		report := func(percent float64) {
			r.tracker.Update(ctx, name, percent)
		}

		summary, err := run(ctx, report)

		// the tracker writes below must survive the run's own cancellation
		done := context.Background()

		switch {
		case errors.Is(err, context.Canceled):
			// a requested stop, not a failure
			logger.Infof("task %s canceled: %s", name, summary)
			r.tracker.Cancel(done, name)
		case err != nil:
			logger.Error(err, fmt.Sprintf("task %s failed", name))
			r.tracker.Fail(done, name, err.Error())
		default:
			logger.Infof("task %s completed: %s", name, summary)
			r.tracker.Finish(done, name, summary)
		}
	}()

	return nil
}
