package decompose

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"taskpilot-backend/internal/task/domain"
)

// FallbackTitleSuffix marks the title of a task planned without a usable model reply
const FallbackTitleSuffix = " (split by AI)"

// FallbackDeadlineDays is how far ahead the fallback deadline is set
const FallbackDeadlineDays = 7

// fallbackSubtasks is the generic plan used when the reply cannot be interpreted
var fallbackSubtasks = []string{
	"Prepare and plan the work",
	"Complete the main part of the task",
	"Review the result and wrap up",
}

var errNoPlan = errors.New("reply has neither a task object nor a subtasks array")

// TaskPlan holds the task-level fields of a decomposition
type TaskPlan struct {
	Title    string          `json:"title"`
	Priority domain.Priority `json:"priority"`
	Deadline string          `json:"deadline"`
}

// SubtaskPlan is one proposed step
type SubtaskPlan struct {
	Text string `json:"text"`
}

// Result is the structure interpreted from a model reply
type Result struct {
	Task     TaskPlan      `json:"task"`
	Subtasks []SubtaskPlan `json:"subtasks"`
}

// Outcome is either a parsed Result or the fallback one; UsedFallback tells which
type Outcome struct {
	Result       Result
	UsedFallback bool
	// Reason explains why the fallback was used, empty otherwise
	Reason string
}

// FallbackSubtasks returns a copy of the deterministic fallback plan
func FallbackSubtasks() []SubtaskPlan {
	out := make([]SubtaskPlan, len(fallbackSubtasks))
	for i, text := range fallbackSubtasks {
		out[i] = SubtaskPlan{Text: text}
	}
	return out
}

// ParseOrFallback interprets a sanitized reply. It never fails: a reply that
// cannot be used yields the fallback plan built from the original fields.
func ParseOrFallback(candidate, title, priority, deadline string, now time.Time) Outcome {
	parsed, err := parse(candidate)
	if err != nil {
		return Outcome{
			Result: Result{
				Task:     fillTask(TaskPlan{Title: title + FallbackTitleSuffix}, title, priority, deadline, now),
				Subtasks: FallbackSubtasks(),
			},
			UsedFallback: true,
			Reason:       err.Error(),
		}
	}

	out := Outcome{Result: parsed}
	out.Result.Task = fillTask(parsed.Task, title, priority, deadline, now)
	if len(out.Result.Subtasks) == 0 {
		out.Result.Subtasks = FallbackSubtasks()
		out.UsedFallback = true
		out.Reason = "reply contained no usable subtasks"
	}
	return out
}

// fillTask applies the per-field fallbacks so no output field is left blank
func fillTask(plan TaskPlan, title, priority, deadline string, now time.Time) TaskPlan {
	if strings.TrimSpace(plan.Title) == "" {
		plan.Title = title
	}
	plan.Title = strings.TrimSpace(plan.Title)

	p := string(plan.Priority)
	if p == "" {
		p = priority
	}
	plan.Priority = domain.ParsePriority(strings.ToLower(strings.TrimSpace(p)))

	d := strings.TrimSpace(plan.Deadline)
	if d == "" {
		d = deadline
	}
	if d == "" {
		d = now.AddDate(0, 0, FallbackDeadlineDays).Format(domain.DateLayout)
	}
	plan.Deadline, _ = domain.NormalizeDeadline(d)
	return plan
}

func parse(candidate string) (Result, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &root); err != nil {
		return Result{}, err
	}
	if root == nil {
		return Result{}, errNoPlan
	}

	var res Result
	var taskObj map[string]json.RawMessage
	hasTask := decodeInto(root["task"], &taskObj) && taskObj != nil
	var items []json.RawMessage
	hasSubtasks := decodeInto(root["subtasks"], &items) && items != nil
	if !hasTask && !hasSubtasks {
		return Result{}, errNoPlan
	}

	if hasTask {
		res.Task = TaskPlan{
			Title:    stringField(taskObj["title"]),
			Priority: domain.Priority(stringField(taskObj["priority"])),
			Deadline: stringField(taskObj["deadline"]),
		}
	}
	for _, item := range items {
		if text := subtaskText(item); text != "" {
			res.Subtasks = append(res.Subtasks, SubtaskPlan{Text: text})
		}
	}
	return res, nil
}

func decodeInto(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func stringField(raw json.RawMessage) string {
	var s string
	if decodeInto(raw, &s) {
		return s
	}
	return ""
}

// subtaskText accepts {"text": "..."} and, leniently, a bare string
func subtaskText(raw json.RawMessage) string {
	var obj struct {
		Text string `json:"text"`
	}
	if decodeInto(raw, &obj) {
		return strings.TrimSpace(obj.Text)
	}
	return strings.TrimSpace(stringField(raw))
}
