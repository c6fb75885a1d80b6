package usecase

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"taskpilot-backend/internal/task/domain"
	"taskpilot-backend/internal/task/repository"
	"taskpilot-backend/pkg/ai"
	"taskpilot-backend/pkg/fuzzy"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	aiService   ai.ChatClient
	locker      *TaskLocker
	aiTimeout   time.Duration
	now         func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, subtaskRepo repository.SubtaskRepository, opts Options) TaskUsecase {
	u := &taskUsecase{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		aiTimeout:   opts.AITimeout,
		now:         opts.Now,
	}
	if u.now == nil {
		u.now = time.Now
	}
	if opts.LockTasks {
		u.locker = NewTaskLocker()
	}
	return u
}

func (u *taskUsecase) SetAIService(svc ai.ChatClient) {
	u.aiService = svc
}

func (u *taskUsecase) CreateTask(input TaskInput) (*domain.TaskView, error) {
	valid, err := ValidateTaskInput(input)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:     valid.Title,
		Priority:  valid.Priority,
		Deadline:  valid.Deadline,
		Notes:     valid.Notes,
		Completed: valid.Completed,
	}
	if err := u.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return u.GetTask(task.ID)
}

func (u *taskUsecase) GetTask(id uint) (*domain.TaskView, error) {
	task, err := u.taskRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return domain.NewTaskView(task), nil
}

func (u *taskUsecase) ListTasks(query TaskQuery) ([]*domain.TaskView, error) {
	var filter repository.TaskFilter
	if query.Priority != nil && *query.Priority != "" {
		if !domain.IsValidPriority(*query.Priority) {
			return nil, invalid("priority", CodeInvalidPriority, "priority must be one of: low, medium, high")
		}
		p := domain.Priority(*query.Priority)
		filter.Priority = &p
	}
	filter.Completed = query.Completed

	tasks, err := u.taskRepo.FindAll(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if query.Search == "" {
		views := make([]*domain.TaskView, 0, len(tasks))
		for _, t := range tasks {
			views = append(views, domain.NewTaskView(t))
		}
		return views, nil
	}

	// Fuzzy search: keep matches, most relevant first, store order on ties
	type scoredTask struct {
		task  *domain.Task
		score float64
	}
	var matches []scoredTask
	for _, t := range tasks {
		texts := subtaskTexts(t.Subtasks)
		if !fuzzy.MatchTask(query.Search, t.Title, t.Notes, texts) {
			continue
		}
		matches = append(matches, scoredTask{task: t, score: fuzzy.CalculateRelevanceScore(query.Search, t.Title, t.Notes, texts)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	views := make([]*domain.TaskView, 0, len(matches))
	for _, m := range matches {
		views = append(views, domain.NewTaskView(m.task))
	}
	return views, nil
}

func (u *taskUsecase) UpdateTask(id uint, updates TaskUpdateRequest) (*domain.TaskView, error) {
	task, err := u.taskRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if u.isBusy(id) {
		return nil, ErrTaskBusy
	}
	if err := ValidateTaskUpdate(updates); err != nil {
		return nil, err
	}

	applyTaskUpdate(task, updates)
	if err := u.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return u.GetTask(id)
}

func (u *taskUsecase) DeleteTask(id uint) error {
	exists, err := u.taskRepo.Exists(id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}
	if u.isBusy(id) {
		return ErrTaskBusy
	}
	if err := u.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (u *taskUsecase) CreateSubtask(taskID uint, input SubtaskInput) (*domain.Subtask, error) {
	text, err := ValidateSubtaskText(input.Text)
	if err != nil {
		return nil, err
	}
	if u.isBusy(taskID) {
		return nil, ErrTaskBusy
	}

	subtask := &domain.Subtask{TaskID: taskID, Text: text, Completed: bool(input.Completed)}
	if err := u.subtaskRepo.Create(subtask); err != nil {
		if errors.Is(err, repository.ErrParentTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	return subtask, nil
}

func (u *taskUsecase) ListSubtasks(taskID uint) ([]domain.Subtask, error) {
	if err := u.ensureTask(taskID); err != nil {
		return nil, err
	}
	subtasks, err := u.subtaskRepo.FindByTaskID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}

func (u *taskUsecase) GetSubtask(id uint) (*domain.Subtask, error) {
	subtask, err := u.subtaskRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subtask: %w", err)
	}
	if subtask == nil {
		return nil, ErrSubtaskNotFound
	}
	return subtask, nil
}

func (u *taskUsecase) UpdateSubtask(id uint, updates SubtaskUpdateRequest) (*domain.Subtask, error) {
	subtask, err := u.GetSubtask(id)
	if err != nil {
		return nil, err
	}
	if u.isBusy(subtask.TaskID) {
		return nil, ErrTaskBusy
	}
	if updates.Text == nil && updates.Completed == nil {
		return nil, invalid("", CodeNoFields, "no fields to update")
	}

	if updates.Text != nil {
		text, err := ValidateSubtaskText(*updates.Text)
		if err != nil {
			return nil, err
		}
		subtask.Text = text
	}
	if updates.Completed != nil {
		subtask.Completed = bool(*updates.Completed)
	}

	if err := u.subtaskRepo.Update(subtask); err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}
	return u.GetSubtask(id)
}

func (u *taskUsecase) DeleteSubtask(id uint) error {
	subtask, err := u.GetSubtask(id)
	if err != nil {
		return err
	}
	if u.isBusy(subtask.TaskID) {
		return ErrTaskBusy
	}
	if err := u.subtaskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}
	return nil
}

func (u *taskUsecase) GetSubtaskStats(taskID uint) (*domain.SubtaskStats, error) {
	if err := u.ensureTask(taskID); err != nil {
		return nil, err
	}
	stats, err := u.subtaskRepo.Stats(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subtask stats: %w", err)
	}
	return stats, nil
}

func (u *taskUsecase) ensureTask(id uint) error {
	exists, err := u.taskRepo.Exists(id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}
	return nil
}

func (u *taskUsecase) isBusy(id uint) bool {
	return u.locker != nil && u.locker.IsLocked(id)
}

func subtaskTexts(subtasks []domain.Subtask) []string {
	texts := make([]string, 0, len(subtasks))
	for _, st := range subtasks {
		texts = append(texts, st.Text)
	}
	return texts
}
