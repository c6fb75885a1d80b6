package usecase

import (
	"context"
	"time"

	"taskpilot-backend/internal/task/domain"
	"taskpilot-backend/pkg/ai"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask creates a new task manually
	CreateTask(input TaskInput) (*domain.TaskView, error)

	// GetTask retrieves a task with its subtasks
	GetTask(id uint) (*domain.TaskView, error)

	// ListTasks retrieves all tasks matching the query, priority order
	ListTasks(query TaskQuery) ([]*domain.TaskView, error)

	// UpdateTask applies a validated partial update
	UpdateTask(id uint, updates TaskUpdateRequest) (*domain.TaskView, error)

	// DeleteTask deletes a task and its subtasks
	DeleteTask(id uint) error

	CreateSubtask(taskID uint, input SubtaskInput) (*domain.Subtask, error)
	ListSubtasks(taskID uint) ([]domain.Subtask, error)
	GetSubtask(id uint) (*domain.Subtask, error)
	UpdateSubtask(id uint, updates SubtaskUpdateRequest) (*domain.Subtask, error)
	DeleteSubtask(id uint) error
	GetSubtaskStats(taskID uint) (*domain.SubtaskStats, error)

	// CreateTaskByAI asks the model to decompose a new task and persists the plan
	CreateTaskByAI(ctx context.Context, input TaskInput) (*domain.AITaskView, error)

	// UpdateTaskByAI re-plans an existing task and replaces its subtasks
	UpdateTaskByAI(ctx context.Context, id uint, updates TaskUpdateRequest) (*domain.AITaskView, error)

	// SetAIService sets the chat client used by the AI flows
	SetAIService(svc ai.ChatClient)
}

// TaskQuery filters ListTasks; empty fields match everything
type TaskQuery struct {
	Search    string
	Priority  *string
	Completed *bool
}

// Options tunes the usecase
type Options struct {
	// AITimeout bounds a single model call; zero means no timeout
	AITimeout time.Duration
	// LockTasks rejects manual edits of a task while the AI is optimizing it
	LockTasks bool
	// Now is the clock used for fallback deadlines
	Now func() time.Time
}
