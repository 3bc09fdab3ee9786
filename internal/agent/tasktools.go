package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const dueDateLayout = "2006-01-02"

type addTaskParams struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type listTasksParams struct {
	Filter string `json:"filter" validate:"omitempty,oneof=all pending completed"`
}

type taskIDParams struct {
	TaskID int64 `json:"task_id" validate:"required,gt=0"`
}

type updateTaskParams struct {
	TaskID      int64   `json:"task_id" validate:"required,gt=0"`
	Title       *string `json:"title" validate:"omitempty,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Completed   *bool   `json:"completed"`
}

type statisticsParams struct{}

// taskSummary is the task shape returned inside tool results
type taskSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

func summarize(t *domain.Task) taskSummary {
	s := taskSummary{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(dueDateLayout)
		s.DueDate = &due
	}
	return s
}

// RegisterTaskTools populates the registry with the task management catalog,
// binding every executor to the user-scoped task repository.
func RegisterTaskTools(registry *Registry, tasks domain.TaskRepository) {
	registry.Register(&ToolSpec{
		Name:        "add_task",
		Description: "Add a new task to the user's todo list",
		Idempotent:  false,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "The title of the task",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Optional detailed description of the task",
				},
				"priority": map[string]any{
					"type":        "string",
					"enum":        []string{"low", "medium", "high"},
					"description": "Priority level of the task",
				},
				"due_date": map[string]any{
					"type":        "string",
					"description": "Optional due date in ISO format (YYYY-MM-DD)",
				},
			},
			"required": []string{"title"},
		},
		NewParams: func() any { return &addTaskParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			p := params.(*addTaskParams)

			title := strings.TrimSpace(p.Title)
			if title == "" {
				return nil, &ToolError{Code: CodeInvalidParameters, Message: "task title cannot be empty"}
			}

			priority := domain.TaskPriority(p.Priority)
			if priority == "" {
				priority = domain.PriorityMedium
			}

			now := time.Now()
			task := &domain.Task{
				UserID:    userID,
				Title:     title,
				Priority:  priority,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if p.Description != nil {
				desc := strings.TrimSpace(*p.Description)
				if desc != "" {
					task.Description = &desc
				}
			}
			if p.DueDate != "" {
				due, err := time.Parse(dueDateLayout, p.DueDate)
				if err != nil {
					return nil, &ToolError{Code: CodeInvalidParameters, Message: "parameter \"due_date\" is invalid"}
				}
				task.DueDate = &due
			}

			if err := tasks.Create(ctx, task); err != nil {
				return nil, storeError("add_task", err)
			}

			return map[string]any{
				"task_id": task.ID,
				"status":  "created",
				"title":   task.Title,
				"task":    summarize(task),
			}, nil
		},
	})

	registry.Register(&ToolSpec{
		Name:        "list_tasks",
		Description: "List tasks for the user with optional filtering",
		Idempotent:  true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filter": map[string]any{
					"type":        "string",
					"enum":        []string{"all", "pending", "completed"},
					"description": "Filter tasks by status: all, pending, or completed",
				},
			},
			"required": []string{},
		},
		NewParams: func() any { return &listTasksParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			p := params.(*listTasksParams)

			filter := domain.TaskFilter(p.Filter)
			if filter == "" {
				filter = domain.FilterAll
			}

			list, err := tasks.List(ctx, userID, filter)
			if err != nil {
				return nil, storeError("list_tasks", err)
			}
			stats, err := tasks.Stats(ctx, userID)
			if err != nil {
				return nil, storeError("list_tasks", err)
			}

			summaries := make([]taskSummary, 0, len(list))
			for i := range list {
				summaries = append(summaries, summarize(&list[i]))
			}

			return map[string]any{
				"filter":     string(filter),
				"count":      len(summaries),
				"tasks":      summaries,
				"statistics": stats,
			}, nil
		},
	})

	registry.Register(&ToolSpec{
		Name:        "complete_task",
		Description: "Mark a task as completed",
		Idempotent:  true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the task to complete",
				},
			},
			"required": []string{"task_id"},
		},
		NewParams: func() any { return &taskIDParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			p := params.(*taskIDParams)

			task, err := tasks.Get(ctx, userID, p.TaskID)
			if err != nil {
				return nil, storeError("complete_task", err)
			}
			if task == nil {
				return nil, notFound(p.TaskID)
			}

			// Completing an already-completed task is a success, not an error.
			if !task.Completed {
				now := time.Now()
				task.Completed = true
				task.CompletedAt = &now
				task.UpdatedAt = now
				if err := tasks.Update(ctx, task); err != nil {
					return nil, storeError("complete_task", err)
				}
			}

			return map[string]any{
				"task_id": task.ID,
				"status":  "completed",
				"title":   task.Title,
			}, nil
		},
	})

	registry.Register(&ToolSpec{
		Name:        "delete_task",
		Description: "Delete a task from the todo list",
		Idempotent:  true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the task to delete",
				},
			},
			"required": []string{"task_id"},
		},
		NewParams: func() any { return &taskIDParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			p := params.(*taskIDParams)

			task, err := tasks.Get(ctx, userID, p.TaskID)
			if err != nil {
				return nil, storeError("delete_task", err)
			}
			if task == nil {
				return nil, notFound(p.TaskID)
			}

			deleted, err := tasks.Delete(ctx, userID, p.TaskID)
			if err != nil {
				return nil, storeError("delete_task", err)
			}
			if !deleted {
				return nil, notFound(p.TaskID)
			}

			return map[string]any{
				"task_id": task.ID,
				"status":  "deleted",
				"title":   task.Title,
			}, nil
		},
	})

	registry.Register(&ToolSpec{
		Name:        "update_task",
		Description: "Update a task's details",
		Idempotent:  true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the task to update",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "New title for the task",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "New description for the task",
				},
				"priority": map[string]any{
					"type":        "string",
					"enum":        []string{"low", "medium", "high"},
					"description": "New priority level",
				},
				"due_date": map[string]any{
					"type":        "string",
					"description": "New due date in ISO format (YYYY-MM-DD)",
				},
				"completed": map[string]any{
					"type":        "boolean",
					"description": "New completion status",
				},
			},
			"required": []string{"task_id"},
		},
		NewParams: func() any { return &updateTaskParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			p := params.(*updateTaskParams)

			if p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil && p.Completed == nil {
				return nil, &ToolError{Code: CodeInvalidParameters, Message: "no updates provided"}
			}

			task, err := tasks.Get(ctx, userID, p.TaskID)
			if err != nil {
				return nil, storeError("update_task", err)
			}
			if task == nil {
				return nil, notFound(p.TaskID)
			}

			if p.Title != nil {
				title := strings.TrimSpace(*p.Title)
				if title == "" {
					return nil, &ToolError{Code: CodeInvalidParameters, Message: "task title cannot be empty"}
				}
				task.Title = title
			}
			if p.Description != nil {
				desc := strings.TrimSpace(*p.Description)
				task.Description = &desc
			}
			if p.Priority != nil {
				task.Priority = domain.TaskPriority(*p.Priority)
			}
			if p.DueDate != nil {
				due, err := time.Parse(dueDateLayout, *p.DueDate)
				if err != nil {
					return nil, &ToolError{Code: CodeInvalidParameters, Message: "parameter \"due_date\" is invalid"}
				}
				task.DueDate = &due
			}
			if p.Completed != nil {
				task.Completed = *p.Completed
				if *p.Completed {
					now := time.Now()
					task.CompletedAt = &now
				} else {
					task.CompletedAt = nil
				}
			}

			task.UpdatedAt = time.Now()
			if err := tasks.Update(ctx, task); err != nil {
				return nil, storeError("update_task", err)
			}

			return map[string]any{
				"task_id": task.ID,
				"status":  "updated",
				"title":   task.Title,
			}, nil
		},
	})

	registry.Register(&ToolSpec{
		Name:        "get_task_statistics",
		Description: "Get statistics about the user's tasks (total, completed, pending)",
		Idempotent:  true,
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
		NewParams: func() any { return &statisticsParams{} },
		Execute: func(ctx context.Context, userID uuid.UUID, params any) (any, *ToolError) {
			stats, err := tasks.Stats(ctx, userID)
			if err != nil {
				return nil, storeError("get_task_statistics", err)
			}
			return map[string]any{
				"total":     stats.Total,
				"completed": stats.Completed,
				"pending":   stats.Pending,
			}, nil
		},
	})
}

func notFound(taskID int64) *ToolError {
	return &ToolError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("task %d not found", taskID),
	}
}

func storeError(tool string, err error) *ToolError {
	log.Error().Err(err).Str("tool", tool).Msg("task store operation failed")
	return &ToolError{Code: CodeInternal, Message: "the operation failed unexpectedly"}
}
