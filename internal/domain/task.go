package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskFilter selects tasks by completion state
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
)

// Valid reports whether the filter is one of the known values
func (f TaskFilter) Valid() bool {
	return f == FilterAll || f == FilterPending || f == FilterCompleted
}

// Task represents a user-owned todo item.
//
// Task IDs are allocated from a per-user sequence, so numeric IDs are only
// meaningful together with the owning user. A deleted task keeps its row as a
// tombstone; its ID is never reassigned.
type Task struct {
	ID          int64        `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Completed   bool         `json:"completed"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"-"`
}

// TaskStats summarizes a user's task counts
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// TaskRepository defines the interface for task storage.
// Every operation is scoped to the owning user; implementations must make
// cross-user access impossible, not merely checked.
type TaskRepository interface {
	// Create inserts a new task, assigning task.ID from the user's sequence.
	Create(ctx context.Context, task *Task) error
	// Get returns the task, or nil when it does not exist (or is deleted).
	Get(ctx context.Context, userID uuid.UUID, taskID int64) (*Task, error)
	// List returns live tasks matching the filter, oldest first.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]Task, error)
	// Update persists title, description, priority, due date and completion.
	Update(ctx context.Context, task *Task) error
	// Delete tombstones the task. Returns false when there was nothing to delete.
	Delete(ctx context.Context, userID uuid.UUID, taskID int64) (bool, error)
	// Stats returns total/completed/pending counts for live tasks.
	Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error)
}
