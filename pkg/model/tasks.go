package model

import "time"

// TaskStatus defines the state of a batch task run.
type TaskStatus string

const (
	TaskIdle      TaskStatus = "idle"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskCanceled  TaskStatus = "canceled"
	TaskFailed    TaskStatus = "failed"
)

// Task names for the admin surface and the progress trackers.
const (
	TaskGeneration = "generation"
	TaskCleanup    = "cleanup"
)

// TaskState is the externally visible state of one task.
type TaskState struct {
	Name       string     `json:"name"`
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"` // 0-100
	Message    string     `json:"message,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// GenerationReport summarizes one timeline preview generation run.
type GenerationReport struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// CleanupReport summarizes one cache reconciliation run.
type CleanupReport struct {
	Valid        int   `json:"valid"`
	Orphaned     int   `json:"orphaned"`
	Malformed    int   `json:"malformed"`
	Deleted      int   `json:"deleted"`
	DeleteFailed int   `json:"delete_failed"`
	BytesFreed   int64 `json:"bytes_freed"`
}
