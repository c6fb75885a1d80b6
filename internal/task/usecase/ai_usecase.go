package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskpilot-backend/internal/task/decompose"
	"taskpilot-backend/internal/task/domain"
	"taskpilot-backend/pkg/ai"
)

// Notes markers appended by the AI flows
const (
	NoteCreatedByAI   = "Created by AI"
	NoteOptimizedByAI = "Optimized by AI"
)

func (u *taskUsecase) CreateTaskByAI(ctx context.Context, input TaskInput) (*domain.AITaskView, error) {
	valid, err := ValidateTaskInput(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidData, err.Error())
	}

	deadline := deref(valid.Deadline)
	prompt := decompose.BuildPrompt(valid.Title, string(valid.Priority), deadline, valid.Notes)

	raw, err := u.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	outcome := decompose.ParseOrFallback(decompose.Sanitize(raw), valid.Title, string(valid.Priority), deadline, u.now())
	if outcome.UsedFallback {
		log.Printf("[TaskUsecase] Using fallback plan for %q: %s", valid.Title, outcome.Reason)
	}

	plan := outcome.Result.Task
	task := &domain.Task{
		Title:     plan.Title,
		Priority:  plan.Priority,
		Deadline:  &plan.Deadline,
		Notes:     annotateNotes(valid.Notes, NoteCreatedByAI),
		Completed: false,
	}
	if err := u.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("%w: failed to save task: %v", ErrAIFlowFailed, err)
	}

	created := u.insertSubtasks(task.ID, outcome.Result.Subtasks)
	log.Printf("[TaskUsecase] AI created task %d with %d subtasks", task.ID, created)

	view, err := u.reload(task.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AITaskView{TaskView: view, AIGenerated: true, AIFallbackUsed: outcome.UsedFallback}, nil
}

func (u *taskUsecase) UpdateTaskByAI(ctx context.Context, id uint, updates TaskUpdateRequest) (*domain.AITaskView, error) {
	existing, err := u.taskRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if existing == nil {
		return nil, ErrTaskNotFound
	}

	valid, err := ValidateTaskInput(mergeTaskInput(existing, updates))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidData, err.Error())
	}

	if u.locker != nil {
		if !u.locker.TryLock(id) {
			return nil, ErrTaskBusy
		}
		defer u.locker.Unlock(id)
	}

	deadline := deref(valid.Deadline)
	prompt := decompose.BuildOptimizePrompt(valid.Title, string(valid.Priority), deadline, valid.Notes, subtaskTexts(existing.Subtasks))

	raw, err := u.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	outcome := decompose.ParseOrFallback(decompose.Sanitize(raw), valid.Title, string(valid.Priority), deadline, u.now())
	if outcome.UsedFallback {
		log.Printf("[TaskUsecase] Using fallback plan for task %d: %s", id, outcome.Reason)
	}

	plan := outcome.Result.Task
	existing.Title = plan.Title
	existing.Priority = plan.Priority
	existing.Deadline = &plan.Deadline
	existing.Notes = annotateNotes(valid.Notes, NoteOptimizedByAI)
	if updates.Completed != nil {
		existing.Completed = bool(*updates.Completed)
	}
	if err := u.taskRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("%w: failed to update task: %v", ErrAIFlowFailed, err)
	}

	// The new plan replaces every existing subtask, completed ones included
	removed, err := u.subtaskRepo.DeleteByTaskID(id, false)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to clear subtasks: %v", ErrAIFlowFailed, err)
	}
	created := u.insertSubtasks(id, outcome.Result.Subtasks)
	log.Printf("[TaskUsecase] AI optimized task %d: replaced %d subtasks with %d", id, removed, created)

	view, err := u.reload(id)
	if err != nil {
		return nil, err
	}
	return &domain.AITaskView{TaskView: view, AIOptimized: true, AIFallbackUsed: outcome.UsedFallback}, nil
}

// callModel performs the single chat completion of a flow
func (u *taskUsecase) callModel(ctx context.Context, prompt string) (string, error) {
	if u.aiService == nil {
		return "", fmt.Errorf("%w: AI service not configured", ErrAIUnavailable)
	}

	if u.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.aiTimeout)
		defer cancel()
	}

	log.Printf("[AI] Calling %s", u.aiService.Name())
	raw, err := u.aiService.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{ai.UserMessage(prompt)},
		Format:   ai.ResponseFormatJSON,
	})
	if err != nil {
		log.Printf("[AI] %s call failed: %v", u.aiService.Name(), err)
		if ai.IsUnavailable(err) {
			return "", fmt.Errorf("%w: %s", ErrAIUnavailable, ai.UnavailableDetail(err))
		}
		return "", fmt.Errorf("%w: %v", ErrAIFlowFailed, err)
	}
	return raw, nil
}

// insertSubtasks writes subtasks one by one; failures are logged and skipped
func (u *taskUsecase) insertSubtasks(taskID uint, plans []decompose.SubtaskPlan) int {
	created := 0
	for _, p := range plans {
		st := &domain.Subtask{TaskID: taskID, Text: p.Text}
		if err := u.subtaskRepo.Create(st); err != nil {
			log.Printf("[TaskUsecase] Failed to create subtask %q for task %d: %v", p.Text, taskID, err)
			continue
		}
		created++
	}
	return created
}

func (u *taskUsecase) reload(id uint) (*domain.TaskView, error) {
	task, err := u.taskRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload task: %v", ErrAIFlowFailed, err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %d disappeared", ErrAIFlowFailed, id)
	}
	return domain.NewTaskView(task), nil
}

// mergeTaskInput seeds an input from the stored task, overlaid by the request
func mergeTaskInput(task *domain.Task, updates TaskUpdateRequest) TaskInput {
	input := TaskInput{
		Title:     task.Title,
		Priority:  string(task.Priority),
		Deadline:  task.Deadline,
		Notes:     task.Notes,
		Completed: FlexBool(task.Completed),
	}
	if updates.Title != nil {
		input.Title = *updates.Title
	}
	if updates.Priority != nil {
		input.Priority = *updates.Priority
	}
	if updates.Deadline.Set {
		input.Deadline = updates.Deadline.Value
	}
	if updates.Notes != nil {
		input.Notes = *updates.Notes
	}
	return input
}

// annotateNotes appends marker to notes once
func annotateNotes(notes, marker string) string {
	notes = strings.TrimSpace(notes)
	switch {
	case notes == "":
		return marker
	case strings.Contains(notes, marker):
		return notes
	default:
		return notes + " | " + marker
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
