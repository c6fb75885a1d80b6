package repository

import (
	"taskpilot-backend/internal/task/domain"
)

// TaskFilter narrows FindAll
type TaskFilter struct {
	Priority  *domain.Priority
	Completed *bool
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *domain.Task) error

	// FindByID finds a task by its ID, subtasks preloaded in creation order.
	// Returns nil, nil when the task does not exist.
	FindByID(id uint) (*domain.Task, error)

	// Exists reports whether a task with the given ID exists
	Exists(id uint) (bool, error)

	// FindAll returns tasks ordered by priority (high first), then newest first
	FindAll(filter TaskFilter) ([]*domain.Task, error)

	// Update saves the scalar fields of an existing task
	Update(task *domain.Task) error

	// Delete deletes a task and all of its subtasks
	Delete(id uint) error
}

// SubtaskRepository defines the interface for subtask data access
type SubtaskRepository interface {
	// Create creates a subtask; the parent task must exist
	Create(subtask *domain.Subtask) error

	// FindByID returns nil, nil when the subtask does not exist
	FindByID(id uint) (*domain.Subtask, error)

	// FindByTaskID lists subtasks of a task in creation order
	FindByTaskID(taskID uint) ([]domain.Subtask, error)

	// Update saves text and completed
	Update(subtask *domain.Subtask) error

	// Delete deletes a subtask by ID
	Delete(id uint) error

	// DeleteByTaskID removes the subtasks of a task and returns how many were deleted
	DeleteByTaskID(taskID uint, onlyIncomplete bool) (int64, error)

	// Stats returns completion statistics for a task's subtasks
	Stats(taskID uint) (*domain.SubtaskStats, error)
}
