package usecase

import "errors"

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	// ErrInvalidData rejects AI requests whose input fails validation
	ErrInvalidData   = errors.New("invalid data")
	ErrAIUnavailable = errors.New("AI service unavailable")
	ErrAIFlowFailed  = errors.New("AI flow failed")
	ErrTaskBusy      = errors.New("task is being optimized by AI")
)

// Validation error codes
const (
	CodeInvalidTitle    = "INVALID_TITLE"
	CodeInvalidPriority = "INVALID_PRIORITY"
	CodeInvalidDeadline = "INVALID_DEADLINE"
	CodeInvalidText     = "INVALID_TEXT"
	CodeNoFields        = "NO_FIELDS"
)

// ValidationError describes the first invalid field of an input
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}
