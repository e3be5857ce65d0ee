package domain

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// BackgroundTask is a detached save that finishes after the request returned.
type BackgroundTask struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	OwnerID    string     `json:"owner_id"`
	Status     TaskStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type TaskQueue interface {
	Enqueue(kind, ownerID string, run func(ctx context.Context) error) (string, error)
	Tasks() []BackgroundTask
	// Task reports false when id is unknown or already evicted from history.
	Task(id string) (BackgroundTask, bool)
}
