package usecase

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"taskpilot-backend/internal/task/domain"
)

// FlexBool accepts JSON booleans, numbers and strings with truthy semantics
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*b = FlexBool(val)
	case float64:
		*b = val != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		if parsed, err := strconv.ParseBool(s); err == nil {
			*b = FlexBool(parsed)
		} else {
			*b = s != "" && s != "no" && s != "off" && s != "null" && s != "undefined"
		}
	default:
		*b = false
	}
	return nil
}

// OptionalString distinguishes an absent field from an explicit null
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// TaskInput is the raw input for manual and AI task creation
type TaskInput struct {
	Title     string   `json:"title"`
	Priority  string   `json:"priority"`
	Deadline  *string  `json:"deadline"`
	Notes     string   `json:"notes"`
	Completed FlexBool `json:"completed"`
}

// ValidTask is a normalized TaskInput
type ValidTask struct {
	Title     string
	Priority  domain.Priority
	Deadline  *string
	Notes     string
	Completed bool
}

// TaskUpdateRequest represents the fields that can be updated
type TaskUpdateRequest struct {
	Title     *string        `json:"title,omitempty"`
	Priority  *string        `json:"priority,omitempty"`
	Deadline  OptionalString `json:"deadline"`
	Completed *FlexBool      `json:"completed,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
}

// SubtaskInput is the raw input for subtask creation
type SubtaskInput struct {
	Text      string   `json:"text"`
	Completed FlexBool `json:"completed"`
}

// SubtaskUpdateRequest represents the subtask fields that can be updated
type SubtaskUpdateRequest struct {
	Text      *string   `json:"text,omitempty"`
	Completed *FlexBool `json:"completed,omitempty"`
}

// ValidateTaskInput normalizes input shared by manual and AI creation
func ValidateTaskInput(input TaskInput) (ValidTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ValidTask{}, invalid("title", CodeInvalidTitle, "task title is required")
	}

	return ValidTask{
		Title:     title,
		Priority:  domain.ParsePriority(input.Priority),
		Deadline:  normalizeDeadline(input.Deadline),
		Notes:     strings.TrimSpace(input.Notes),
		Completed: bool(input.Completed),
	}, nil
}

// normalizeDeadline formats dates as YYYY-MM-DD, maps empty to nil and
// passes any other string through
func normalizeDeadline(d *string) *string {
	if d == nil {
		return nil
	}
	s := strings.TrimSpace(*d)
	if s == "" {
		return nil
	}
	s, _ = domain.NormalizeDeadline(s)
	return &s
}

// ValidateTaskUpdate checks a manual partial update; unlike creation it rejects
// unknown priorities and unparseable deadlines
func ValidateTaskUpdate(req TaskUpdateRequest) error {
	if req.Title == nil && req.Priority == nil && !req.Deadline.Set && req.Completed == nil && req.Notes == nil {
		return invalid("", CodeNoFields, "no fields to update")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return invalid("title", CodeInvalidTitle, "task title cannot be empty")
	}
	if req.Priority != nil && !domain.IsValidPriority(*req.Priority) {
		return invalid("priority", CodeInvalidPriority, "priority must be one of: low, medium, high")
	}
	if req.Deadline.Set && req.Deadline.Value != nil {
		if s := strings.TrimSpace(*req.Deadline.Value); s != "" {
			if _, ok := domain.NormalizeDeadline(s); !ok {
				return invalid("deadline", CodeInvalidDeadline, "deadline must be a date in YYYY-MM-DD format")
			}
		}
	}
	return nil
}

// applyTaskUpdate copies validated fields onto task
func applyTaskUpdate(task *domain.Task, req TaskUpdateRequest) {
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Priority != nil {
		task.Priority = domain.ParsePriority(*req.Priority)
	}
	if req.Deadline.Set {
		task.Deadline = normalizeDeadline(req.Deadline.Value)
	}
	if req.Completed != nil {
		task.Completed = bool(*req.Completed)
	}
	if req.Notes != nil {
		task.Notes = strings.TrimSpace(*req.Notes)
	}
}

// ValidateSubtaskText trims and requires subtask text
func ValidateSubtaskText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid("text", CodeInvalidText, "subtask text is required")
	}
	return text, nil
}
