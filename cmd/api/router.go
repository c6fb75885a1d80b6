package api

import (
	"net/http"

	authDelivery "taskpilot-backend/internal/auth/delivery"
	authUsecase "taskpilot-backend/internal/auth/usecase"
	taskDelivery "taskpilot-backend/internal/task/delivery"
	"taskpilot-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// endpoints is listed by the API info route
var endpoints = []string{
	"GET /health",
	"GET /tasks",
	"POST /tasks",
	"GET /tasks/:id",
	"PUT /tasks/:id",
	"DELETE /tasks/:id",
	"GET /tasks/:id/subtasks",
	"POST /tasks/:id/subtasks",
	"GET /tasks/:id/subtasks/stats",
	"GET /subtasks/:id",
	"PUT /subtasks/:id",
	"DELETE /subtasks/:id",
	"POST /ai/tasks",
	"PUT /ai/tasks/:id",
	"GET /settings/ai",
	"PUT /settings/ai",
	"POST /settings/ai/test",
}

// RequestID tags every request with an X-Request-ID, reusing the client's if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, prefix string, authUc authUsecase.AuthUsecase, taskHandler *taskDelivery.TaskHandler, settingsHandler *SettingsHandler) {
	api := r.Group(prefix)
	{
		// API info and health check (no auth required)
		api.GET("/", func(c *gin.Context) {
			response.OK(c, http.StatusOK, gin.H{
				"name":      "taskpilot API",
				"prefix":    prefix,
				"endpoints": endpoints,
			}, "Task manager API server")
		})
		api.GET("/health", func(c *gin.Context) {
			response.OK(c, http.StatusOK, gin.H{"status": "ok"}, "")
		})

		protected := api.Group("")
		protected.Use(authDelivery.AuthMiddleware(authUc))

		// Task routes
		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.GET("/:id/subtasks", taskHandler.GetSubtasks)
			tasks.POST("/:id/subtasks", taskHandler.CreateSubtask)
			tasks.GET("/:id/subtasks/stats", taskHandler.GetSubtaskStats)
		}

		// Subtask routes
		subtasks := protected.Group("/subtasks")
		{
			subtasks.GET("/:id", taskHandler.GetSubtask)
			subtasks.PUT("/:id", taskHandler.UpdateSubtask)
			subtasks.DELETE("/:id", taskHandler.DeleteSubtask)
		}

		// AI routes - decomposition by the model
		aiRoutes := protected.Group("/ai")
		{
			aiRoutes.POST("/tasks", taskHandler.CreateTaskWithAI)
			aiRoutes.PUT("/tasks/:id", taskHandler.UpdateTaskWithAI)
		}

		// Settings routes - Runtime configuration
		settings := protected.Group("/settings")
		{
			settings.GET("/ai", settingsHandler.GetAISettings)
			settings.PUT("/ai", settingsHandler.UpdateAISettings)
			settings.POST("/ai/test", settingsHandler.TestAIConnection)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
}
