package app

import (
	"errors"
	"time"

	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/service-api/internal/service/tasks"
)

// scheduler fires the batch tasks on their configured intervals. A tick that
// lands while the previous run of the same task is still active is skipped;
// the runner's mutual exclusion makes that race harmless.
type scheduler struct {
	runner *tasks.Runner
	cfg    *config.TasksConfig
	stop   chan struct{}
	done   chan struct{}
}

func newScheduler(runner *tasks.Runner, cfg *config.TasksConfig) *scheduler {
	return &scheduler{
		runner: runner,
		cfg:    cfg,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the tick loop. An interval of zero disables that task's
// schedule; manual triggers through the admin surface keep working.
func (s *scheduler) Start() {
	go s.loop()
}

// Stop ends the tick loop and waits for it to exit. Runs already started are
// the runner's to cancel.
func (s *scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *scheduler) loop() {
	defer close(s.done)

	generation := newIntervalTicker(s.cfg.GenerationInterval)
	cleanup := newIntervalTicker(s.cfg.CleanupInterval)
	defer generation.Stop()
	defer cleanup.Stop()

	logger.Infof("task scheduler started: generation every %s, cleanup every %s",
		intervalLabel(s.cfg.GenerationInterval), intervalLabel(s.cfg.CleanupInterval))

	for {
		select {
		case <-generation.C:
			s.fire("generation", func() error { return s.runner.TriggerGeneration(false) })
		case <-cleanup.C:
			s.fire("cleanup", func() error { return s.runner.TriggerCleanup() })
		case <-s.stop:
			return
		}
	}
}

func (s *scheduler) fire(name string, trigger func() error) {
	if err := trigger(); err != nil {
		if errors.Is(err, tasks.ErrAlreadyRunning) {
			logger.Infof("skipping scheduled %s run: previous run still active", name)
			return
		}
		logger.Error(err, "failed to start scheduled "+name+" run")
	}
}

// intervalTicker behaves like time.Ticker but supports a disabled state
type intervalTicker struct {
	C      <-chan time.Time
	ticker *time.Ticker
}

func newIntervalTicker(interval time.Duration) *intervalTicker {
	if interval <= 0 {
		return &intervalTicker{C: nil} // nil channel never fires
	}
	t := time.NewTicker(interval)
	return &intervalTicker{C: t.C, ticker: t}
}

func (t *intervalTicker) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}

func intervalLabel(interval time.Duration) string {
	if interval <= 0 {
		return "disabled"
	}
	return interval.String()
}
