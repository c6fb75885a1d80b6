package delivery

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"taskpilot-backend/internal/task/usecase"
	"taskpilot-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// Error codes not produced by the validator
const (
	CodeInvalidData          = "INVALID_DATA"
	CodeInvalidID            = "INVALID_ID"
	CodeTaskNotFound         = "TASK_NOT_FOUND"
	CodeSubtaskNotFound      = "SUBTASK_NOT_FOUND"
	CodeTaskBusy             = "TASK_BUSY"
	CodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	CodeAIFlowFailed         = "AI_FLOW_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// GetTasks returns all tasks with their subtasks
// GET /tasks?q=report&priority=high&completed=false
func (h *TaskHandler) GetTasks(c *gin.Context) {
	query := usecase.TaskQuery{Search: strings.TrimSpace(c.Query("q"))}
	if p := c.Query("priority"); p != "" {
		query.Priority = &p
	}
	if s := c.Query("completed"); s != "" {
		completed, err := strconv.ParseBool(s)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, CodeInvalidData, "completed must be true or false")
			return
		}
		query.Completed = &completed
	}

	tasks, err := h.taskUsecase.ListTasks(query)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, tasks, "Tasks retrieved successfully")
}

// GetTaskByID returns a specific task
// GET /tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskUsecase.GetTask(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, task, "Task retrieved successfully")
}

// CreateTask creates a new task manually
// POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req usecase.TaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskUsecase.CreateTask(req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusCreated, task, "Task created successfully")
}

// UpdateTask updates an existing task
// PUT /tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var updates usecase.TaskUpdateRequest
	if !bindJSON(c, &updates) {
		return
	}

	task, err := h.taskUsecase.UpdateTask(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, task, "Task updated successfully")
}

// DeleteTask deletes a task and its subtasks
// DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskUsecase.DeleteTask(id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"id": id}, "Task deleted successfully")
}

// CreateTaskWithAI creates a task decomposed by the model
// POST /ai/tasks
func (h *TaskHandler) CreateTaskWithAI(c *gin.Context) {
	var req usecase.TaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskUsecase.CreateTaskByAI(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	message := "Task successfully created with AI assistance"
	if task.AIFallbackUsed {
		message = "Task created with a default plan; the AI reply could not be used"
	}
	response.OK(c, http.StatusCreated, task, message)
}

// UpdateTaskWithAI re-plans a task with the model. All existing subtasks are replaced.
// PUT /ai/tasks/:id
func (h *TaskHandler) UpdateTaskWithAI(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// An empty body, chunked or not, means no overrides
	var updates usecase.TaskUpdateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&updates); err != nil && !errors.Is(err, io.EOF) {
			response.Fail(c, http.StatusBadRequest, CodeInvalidData, "invalid request body: "+err.Error())
			return
		}
	}

	task, err := h.taskUsecase.UpdateTaskByAI(c.Request.Context(), id, updates)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, task, "Task optimized with AI; previous subtasks were replaced")
}

// GetSubtasks lists the subtasks of a task
// GET /tasks/:id/subtasks
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	subtasks, err := h.taskUsecase.ListSubtasks(taskID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, subtasks, "Subtasks retrieved successfully")
}

// CreateSubtask adds a subtask to a task
// POST /tasks/:id/subtasks
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req usecase.SubtaskInput
	if !bindJSON(c, &req) {
		return
	}

	subtask, err := h.taskUsecase.CreateSubtask(taskID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusCreated, subtask, "Subtask created successfully")
}

// GetSubtaskStats returns completion statistics for a task
// GET /tasks/:id/subtasks/stats
func (h *TaskHandler) GetSubtaskStats(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	stats, err := h.taskUsecase.GetSubtaskStats(taskID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, stats, "Subtask statistics retrieved")
}

// GetSubtask returns a single subtask
// GET /subtasks/:id
func (h *TaskHandler) GetSubtask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subtask, err := h.taskUsecase.GetSubtask(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, subtask, "Subtask retrieved successfully")
}

// UpdateSubtask updates text and/or completion of a subtask
// PUT /subtasks/:id
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var updates usecase.SubtaskUpdateRequest
	if !bindJSON(c, &updates) {
		return
	}

	subtask, err := h.taskUsecase.UpdateSubtask(id, updates)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, subtask, "Subtask updated successfully")
}

// DeleteSubtask deletes a subtask
// DELETE /subtasks/:id
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskUsecase.DeleteSubtask(id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"id": id}, "Subtask deleted successfully")
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, CodeInvalidID, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.Fail(c, http.StatusBadRequest, CodeInvalidData, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeError maps usecase errors to status codes and envelope codes
func writeError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Fail(c, http.StatusBadRequest, ve.Code, ve.Message)
	case errors.Is(err, usecase.ErrInvalidData):
		response.Fail(c, http.StatusBadRequest, CodeInvalidData, err.Error())
	case errors.Is(err, usecase.ErrTaskNotFound):
		response.Fail(c, http.StatusNotFound, CodeTaskNotFound, "Task not found")
	case errors.Is(err, usecase.ErrSubtaskNotFound):
		response.Fail(c, http.StatusNotFound, CodeSubtaskNotFound, "Subtask not found")
	case errors.Is(err, usecase.ErrTaskBusy):
		response.Fail(c, http.StatusConflict, CodeTaskBusy, "Task is being optimized by AI, try again shortly")
	case errors.Is(err, usecase.ErrAIUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, CodeAIServiceUnavailable, "AI service is unavailable. Make sure the model server is running and reachable")
	case errors.Is(err, usecase.ErrAIFlowFailed):
		response.Fail(c, http.StatusInternalServerError, CodeAIFlowFailed, err.Error())
	default:
		log.Printf("[TaskHandler] %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Fail(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}
