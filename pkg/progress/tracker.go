package progress

import (
	"context"
	"errors"

	"deovr-bridge/pkg/model"
)

// ErrUnknownTask is returned when no state is recorded for a task name.
var ErrUnknownTask = errors.New("unknown task")

// Reporter receives the fractional progress of a batch run after every unit
// of work. Emitted values are percentages and never decrease within one run.
type Reporter func(percent float64)

// Tracker records externally visible task state so the admin surface can
// observe batch runs.
type Tracker interface {
	Start(ctx context.Context, name string)
	Update(ctx context.Context, name string, percent float64)
	Finish(ctx context.Context, name string, message string)
	Cancel(ctx context.Context, name string)
	Fail(ctx context.Context, name string, message string)
	Snapshot(ctx context.Context, name string) (*model.TaskState, error)
}
