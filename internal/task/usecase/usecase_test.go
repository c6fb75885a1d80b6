package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskpilot-backend/internal/task/decompose"
	"taskpilot-backend/internal/task/domain"
	"taskpilot-backend/internal/task/repository"
	"taskpilot-backend/pkg/ai"
	"taskpilot-backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeChat is a scripted ChatClient
type fakeChat struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	started chan struct{}
	release chan struct{}
}

func (f *fakeChat) Chat(ctx context.Context, req ai.ChatRequest) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Messages[0].Content)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeChat) Name() string { return "fake" }

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fixture struct {
	uc       TaskUsecase
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	chat     *fakeChat
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"), nil)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	f := &fixture{
		tasks:    repository.NewGormTaskRepository(db),
		subtasks: repository.NewGormSubtaskRepository(db),
		chat:     &fakeChat{},
	}
	f.uc = NewTaskUsecase(f.tasks, f.subtasks, opts)
	f.uc.SetAIService(f.chat)
	return f
}

func strPtr(s string) *string { return &s }

func planReply(title string, n int) string {
	s := fmt.Sprintf(`{"task":{"title":%q,"priority":"high","deadline":"2025-04-01"},"subtasks":[`, title)
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ","
		}
		s += fmt.Sprintf(`{"text":"Step %d"}`, i)
	}
	return s + "]}"
}

func TestCreateTask_BlankTitleIsRejected(t *testing.T) {
	f := setup(t, Options{})

	_, err := f.uc.CreateTask(TaskInput{Title: "   "})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalidTitle, ve.Code)

	all, err := f.tasks.FindAll(repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTask_NormalizesInput(t *testing.T) {
	f := setup(t, Options{})

	view, err := f.uc.CreateTask(TaskInput{
		Title:     "  Buy milk ",
		Priority:  "urgent",
		Deadline:  strPtr("2025-03-12T00:00:00.000Z"),
		Notes:     " 2L ",
		Completed: FlexBool(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", view.Title)
	assert.Equal(t, domain.PriorityMedium, view.Priority)
	require.NotNil(t, view.Deadline)
	assert.Equal(t, "2025-03-12", *view.Deadline)
	assert.Equal(t, "2L", view.Notes)
	assert.True(t, view.Completed)
	assert.Empty(t, view.Subtasks)
}

func TestUpdateTask_Validation(t *testing.T) {
	f := setup(t, Options{})
	view, err := f.uc.CreateTask(TaskInput{Title: "Report", Deadline: strPtr("2025-03-12")})
	require.NoError(t, err)

	var ve *ValidationError
	_, err = f.uc.UpdateTask(view.ID, TaskUpdateRequest{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeNoFields, ve.Code)

	_, err = f.uc.UpdateTask(view.ID, TaskUpdateRequest{Priority: strPtr("urgent")})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalidPriority, ve.Code)

	_, err = f.uc.UpdateTask(view.ID, TaskUpdateRequest{Deadline: OptionalString{Set: true, Value: strPtr("next week")}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalidDeadline, ve.Code)

	_, err = f.uc.UpdateTask(999, TaskUpdateRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	updated, err := f.uc.UpdateTask(view.ID, TaskUpdateRequest{
		Priority: strPtr("low"),
		Deadline: OptionalString{Set: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, updated.Priority)
	assert.Nil(t, updated.Deadline)
	assert.Equal(t, "Report", updated.Title)
}

func TestListTasks_SearchAndFilters(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.uc.CreateTask(TaskInput{Title: "Quarterly report", Priority: "high"})
	require.NoError(t, err)
	conf, err := f.uc.CreateTask(TaskInput{Title: "Conference talk", Priority: "low"})
	require.NoError(t, err)
	_, err = f.uc.CreateSubtask(conf.ID, SubtaskInput{Text: "Draft report outline"})
	require.NoError(t, err)

	all, err := f.uc.ListTasks(TaskQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Quarterly report", all[0].Title)

	found, err := f.uc.ListTasks(TaskQuery{Search: "report"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Quarterly report", found[0].Title)

	low, err := f.uc.ListTasks(TaskQuery{Priority: strPtr("low")})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 1, low[0].SubtasksCount)

	_, err = f.uc.ListTasks(TaskQuery{Priority: strPtr("urgent")})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSubtasks_CRUDAndStats(t *testing.T) {
	f := setup(t, Options{})

	_, err := f.uc.CreateSubtask(42, SubtaskInput{Text: "Orphan"})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	task, err := f.uc.CreateTask(TaskInput{Title: "Move house"})
	require.NoError(t, err)

	_, err = f.uc.CreateSubtask(task.ID, SubtaskInput{Text: " "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalidText, ve.Code)

	a, err := f.uc.CreateSubtask(task.ID, SubtaskInput{Text: "Pack boxes"})
	require.NoError(t, err)
	_, err = f.uc.CreateSubtask(task.ID, SubtaskInput{Text: "Book van", Completed: true})
	require.NoError(t, err)

	done := FlexBool(true)
	updated, err := f.uc.UpdateSubtask(a.ID, SubtaskUpdateRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Pack boxes", updated.Text)

	stats, err := f.uc.GetSubtaskStats(task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, 100.0, stats.CompletionRate)

	require.NoError(t, f.uc.DeleteSubtask(a.ID))
	assert.ErrorIs(t, f.uc.DeleteSubtask(a.ID), ErrSubtaskNotFound)

	list, err := f.uc.ListSubtasks(task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Book van", list[0].Text)
}

func TestDeleteTask_RemovesSubtasks(t *testing.T) {
	f := setup(t, Options{})
	task, err := f.uc.CreateTask(TaskInput{Title: "Trip"})
	require.NoError(t, err)
	_, err = f.uc.CreateSubtask(task.ID, SubtaskInput{Text: "Tickets"})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteTask(task.ID))
	assert.ErrorIs(t, f.uc.DeleteTask(task.ID), ErrTaskNotFound)

	left, err := f.subtasks.FindByTaskID(task.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCreateTaskByAI_PersistsPlan(t *testing.T) {
	f := setup(t, Options{})
	f.chat.reply = "```json\n" + planReply("Plan a conference", 4) + "\n```"

	view, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan a conference", Notes: "for 200 people"})
	require.NoError(t, err)

	assert.True(t, view.AIGenerated)
	assert.False(t, view.AIFallbackUsed)
	assert.Equal(t, domain.PriorityHigh, view.Priority)
	assert.Equal(t, "2025-04-01", *view.Deadline)
	assert.Equal(t, "for 200 people | "+NoteCreatedByAI, view.Notes)
	assert.False(t, view.Completed)
	require.Len(t, view.Subtasks, 4)
	assert.Equal(t, 4, view.SubtasksCount)
	assert.Equal(t, "Step 1", view.Subtasks[0].Text)

	stored, err := f.uc.GetTask(view.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Subtasks, 4)

	require.Equal(t, 1, f.chat.calls())
	assert.Contains(t, f.chat.prompts[0], "Plan a conference")
	assert.Contains(t, f.chat.prompts[0], "for 200 people")
}

func TestCreateTaskByAI_GarbageReplyUsesFallback(t *testing.T) {
	f := setup(t, Options{})
	f.chat.reply = "Sorry, I cannot help with that."

	view, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan a conference"})
	require.NoError(t, err)

	assert.True(t, view.AIGenerated)
	assert.True(t, view.AIFallbackUsed)
	assert.Equal(t, "Plan a conference"+decompose.FallbackTitleSuffix, view.Title)
	assert.Equal(t, domain.PriorityMedium, view.Priority)
	assert.Equal(t, "2025-03-17", *view.Deadline)
	assert.Equal(t, NoteCreatedByAI, view.Notes)
	assert.Len(t, view.Subtasks, len(decompose.FallbackSubtasks()))
}

func TestCreateTaskByAI_InvalidInputSkipsModel(t *testing.T) {
	f := setup(t, Options{})

	_, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: ""})

	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Equal(t, 0, f.chat.calls())
}

func TestCreateTaskByAI_ErrorClassification(t *testing.T) {
	f := setup(t, Options{})

	f.chat.err = fmt.Errorf("%w: ollama: dial tcp: connection refused", ai.ErrUnavailable)
	_, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan"})
	assert.ErrorIs(t, err, ErrAIUnavailable)

	f.chat.err = errors.New("ollama returned status 500")
	_, err = f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan"})
	assert.ErrorIs(t, err, ErrAIFlowFailed)
	assert.Contains(t, err.Error(), "status 500")

	all, err := f.tasks.FindAll(repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTaskByAI_WithoutServiceIsUnavailable(t *testing.T) {
	f := setup(t, Options{})
	f.uc.SetAIService(nil)

	_, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestCreateTaskByAI_Timeout(t *testing.T) {
	f := setup(t, Options{AITimeout: 20 * time.Millisecond})
	f.chat.release = make(chan struct{})

	_, err := f.uc.CreateTaskByAI(context.Background(), TaskInput{Title: "Plan"})
	assert.ErrorIs(t, err, ErrAIFlowFailed)
}

func TestUpdateTaskByAI_ReplacesSubtasks(t *testing.T) {
	f := setup(t, Options{})
	task, err := f.uc.CreateTask(TaskInput{Title: "Write thesis", Notes: "chapter 3"})
	require.NoError(t, err)
	for _, text := range []string{"Old A", "Old B"} {
		_, err := f.uc.CreateSubtask(task.ID, SubtaskInput{Text: text})
		require.NoError(t, err)
	}
	f.chat.reply = planReply("Write thesis chapter", 4)

	view, err := f.uc.UpdateTaskByAI(context.Background(), task.ID, TaskUpdateRequest{Priority: strPtr("low")})
	require.NoError(t, err)

	assert.True(t, view.AIOptimized)
	assert.False(t, view.AIGenerated)
	assert.Equal(t, "Write thesis chapter", view.Title)
	assert.Equal(t, "chapter 3 | "+NoteOptimizedByAI, view.Notes)
	require.Len(t, view.Subtasks, 4)
	for _, st := range view.Subtasks {
		assert.NotContains(t, st.Text, "Old")
	}

	left, err := f.subtasks.FindByTaskID(task.ID)
	require.NoError(t, err)
	assert.Len(t, left, 4)

	require.Equal(t, 1, f.chat.calls())
	assert.Contains(t, f.chat.prompts[0], "- Old A")
	assert.Contains(t, f.chat.prompts[0], "low")
}

func TestUpdateTaskByAI_NotFoundBeforeModelCall(t *testing.T) {
	f := setup(t, Options{})

	_, err := f.uc.UpdateTaskByAI(context.Background(), 404, TaskUpdateRequest{})

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, 0, f.chat.calls())
}

func TestUpdateTaskByAI_LocksTaskAgainstManualEdits(t *testing.T) {
	f := setup(t, Options{LockTasks: true})
	task, err := f.uc.CreateTask(TaskInput{Title: "Renovate kitchen"})
	require.NoError(t, err)
	sub, err := f.uc.CreateSubtask(task.ID, SubtaskInput{Text: "Measure"})
	require.NoError(t, err)

	f.chat.reply = planReply("Renovate kitchen", 3)
	f.chat.started = make(chan struct{}, 1)
	f.chat.release = make(chan struct{})

	var wg sync.WaitGroup
	var aiErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, aiErr = f.uc.UpdateTaskByAI(context.Background(), task.ID, TaskUpdateRequest{})
	}()
	<-f.chat.started

	_, err = f.uc.UpdateTask(task.ID, TaskUpdateRequest{Title: strPtr("Manual edit")})
	assert.ErrorIs(t, err, ErrTaskBusy)
	assert.ErrorIs(t, f.uc.DeleteTask(task.ID), ErrTaskBusy)
	assert.ErrorIs(t, f.uc.DeleteSubtask(sub.ID), ErrTaskBusy)
	_, err = f.uc.CreateSubtask(task.ID, SubtaskInput{Text: "Extra"})
	assert.ErrorIs(t, err, ErrTaskBusy)
	_, err = f.uc.UpdateTaskByAI(context.Background(), task.ID, TaskUpdateRequest{})
	assert.ErrorIs(t, err, ErrTaskBusy)

	close(f.chat.release)
	wg.Wait()
	require.NoError(t, aiErr)

	updated, err := f.uc.UpdateTask(task.ID, TaskUpdateRequest{Title: strPtr("Manual edit")})
	require.NoError(t, err)
	assert.Equal(t, "Manual edit", updated.Title)
	assert.Len(t, updated.Subtasks, 3)
}

func TestFlexBool_UnmarshalJSON(t *testing.T) {
	cases := map[string]bool{
		`true`: true, `false`: false, `1`: true, `0`: false,
		`"true"`: true, `"yes"`: true, `"no"`: false, `""`: false, `null`: false,
	}
	for in, want := range cases {
		var b FlexBool
		require.NoError(t, b.UnmarshalJSON([]byte(in)), in)
		assert.Equal(t, want, bool(b), in)
	}
}

func TestAnnotateNotes(t *testing.T) {
	assert.Equal(t, NoteCreatedByAI, annotateNotes("", NoteCreatedByAI))
	assert.Equal(t, "x | "+NoteCreatedByAI, annotateNotes("x", NoteCreatedByAI))
	assert.Equal(t, "x | "+NoteCreatedByAI, annotateNotes("x | "+NoteCreatedByAI, NoteCreatedByAI))
}
