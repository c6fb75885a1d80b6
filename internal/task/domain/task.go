package domain

import "time"

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DateLayout is the storage format of Task.Deadline
const DateLayout = "2006-01-02"

var deadlineLayouts = []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// NormalizeDeadline formats a recognised date or timestamp as YYYY-MM-DD
func NormalizeDeadline(s string) (string, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return s, false
}

// ParsePriority coerces anything outside the enum to medium
func ParsePriority(p string) Priority {
	switch p {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// IsValidPriority reports whether p is exactly one of the three levels
func IsValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a to-do item created manually or by the AI decomposition flow
type Task struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Priority  Priority  `json:"priority" gorm:"default:medium;index"`
	Deadline  *string   `json:"deadline"` // YYYY-MM-DD
	Completed bool      `json:"completed" gorm:"default:false"`
	Notes     string    `json:"notes" gorm:"default:''"`
	Subtasks  []Subtask `json:"subtasks" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtask is one decomposition step belonging to exactly one Task
type Subtask struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    uint      `json:"task_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"not null"`
	Completed bool      `json:"completed" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubtaskStats summarises subtask progress for one task
type SubtaskStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

// TaskView is the read model returned to clients
type TaskView struct {
	*Task
	SubtasksCount     int `json:"subtasks_count"`
	CompletedSubtasks int `json:"completed_subtasks"`
}

// NewTaskView computes subtask counters for t
func NewTaskView(t *Task) *TaskView {
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	v := &TaskView{Task: t, SubtasksCount: len(t.Subtasks)}
	for _, st := range t.Subtasks {
		if st.Completed {
			v.CompletedSubtasks++
		}
	}
	return v
}

// AITaskView is a TaskView annotated with the outcome of an AI flow
type AITaskView struct {
	*TaskView
	AIGenerated    bool `json:"ai_generated,omitempty"`
	AIOptimized    bool `json:"ai_optimized,omitempty"`
	AIFallbackUsed bool `json:"ai_fallback_used"`
}
