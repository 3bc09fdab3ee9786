package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository implements domain.TaskRepository
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create inserts a new task, drawing its ID from the owner's task sequence.
// The sequence row lives on users, so the UPDATE serializes concurrent
// creates for the same user and IDs are never reused.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextID int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET task_seq = task_seq + 1 WHERE id = $1 RETURNING task_seq`,
		task.UserID,
	).Scan(&nextID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to allocate task id: user %s not found", task.UserID)
		}
		return fmt.Errorf("failed to allocate task id: %w", err)
	}

	task.ID = nextID

	_, err = tx.Exec(ctx, `
		INSERT INTO tasks (user_id, id, title, description, priority, due_date, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		task.UserID,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.DueDate,
		task.Completed,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit task create: %w", err)
	}
	return nil
}

// Get returns the live task, or nil when it does not exist or is tombstoned
func (r *TaskRepository) Get(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	query := `
		SELECT user_id, id, title, description, priority, due_date, completed, completed_at, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	var t domain.Task
	var priorityStr string
	err := r.pool.QueryRow(ctx, query, userID, taskID).Scan(
		&t.UserID,
		&t.ID,
		&t.Title,
		&t.Description,
		&priorityStr,
		&t.DueDate,
		&t.Completed,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	t.Priority = domain.TaskPriority(priorityStr)
	return &t, nil
}

// List returns live tasks for the user matching the filter, oldest first
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	query := `
		SELECT user_id, id, title, description, priority, due_date, completed, completed_at, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	switch filter {
	case domain.FilterPending:
		query += ` AND completed = FALSE`
	case domain.FilterCompleted:
		query += ` AND completed = TRUE`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		var priorityStr string
		if err := rows.Scan(
			&t.UserID,
			&t.ID,
			&t.Title,
			&t.Description,
			&priorityStr,
			&t.DueDate,
			&t.Completed,
			&t.CompletedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Priority = domain.TaskPriority(priorityStr)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update persists the mutable fields of a live task
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, due_date = $6,
		    completed = $7, completed_at = $8, updated_at = $9
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query,
		task.UserID,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.DueDate,
		task.Completed,
		task.CompletedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d not found for update", task.ID)
	}
	return nil
}

// Delete tombstones the task so its ID is never reassigned
func (r *TaskRepository) Delete(ctx context.Context, userID uuid.UUID, taskID int64) (bool, error) {
	query := `
		UPDATE tasks
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats counts live tasks for the user
func (r *TaskRepository) Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed),
		       COUNT(*) FILTER (WHERE NOT completed)
		FROM tasks
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	var s domain.TaskStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&s.Total, &s.Completed, &s.Pending); err != nil {
		return nil, fmt.Errorf("failed to get task stats: %w", err)
	}
	return &s, nil
}
