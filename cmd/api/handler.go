package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	authUsecase "taskpilot-backend/internal/auth/usecase"
	taskDelivery "taskpilot-backend/internal/task/delivery"
	taskRepo "taskpilot-backend/internal/task/repository"
	taskUsecasePkg "taskpilot-backend/internal/task/usecase"
	"taskpilot-backend/pkg/ai"
	"taskpilot-backend/pkg/config"
	"taskpilot-backend/pkg/gemini"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	config          *config.Config
	taskHandler     *taskDelivery.TaskHandler
	settingsHandler *SettingsHandler
}

// NewHandler wires repositories, usecases and handlers
func NewHandler(cfg *config.Config, db *gorm.DB) *Handler {
	taskRepository := taskRepo.NewGormTaskRepository(db)
	subtaskRepository := taskRepo.NewGormSubtaskRepository(db)
	taskUc := taskUsecasePkg.NewTaskUsecase(taskRepository, subtaskRepository, taskUsecasePkg.Options{
		AITimeout: cfg.AITimeout,
		LockTasks: cfg.AILockTasks,
	})

	// Initialize runtime config for settings API
	settings := NewRuntimeSettings(cfg.AIProvider, defaultBaseURL(cfg), defaultModel(cfg))

	// Initialize AI service with dynamic config getters for runtime updates
	aiCfg := ai.DynamicConfig{
		Config: ai.Config{
			Provider:        ai.ProviderType(cfg.AIProvider),
			OllamaBaseURL:   cfg.OllamaBaseURL,
			OllamaModel:     cfg.OllamaModel,
			OllamaAPIKey:    cfg.OllamaAPIKey,
			GeminiAPIKey:    cfg.GeminiApiKey,
			GeminiModel:     cfg.GeminiModel,
			AnthropicAPIKey: cfg.AnthropicAPIKey,
			AnthropicModel:  cfg.AnthropicModel,
		},
		GetBaseURL: settings.BaseURL,
		GetModel:   settings.Model,
	}
	aiService, err := ai.NewChatClientWithDynamicConfig(aiCfg)
	var pinger ai.Pinger
	if err != nil {
		log.Printf("[Server] Warning: Failed to initialize AI service: %v. AI endpoints will return %s", err, taskDelivery.CodeAIServiceUnavailable)
	} else {
		taskUc.SetAIService(aiService)
		pinger, _ = aiService.(ai.Pinger)
		log.Printf("[Server] AI service initialized with provider: %s (dynamic config enabled)", aiService.Name())
	}

	authUc := authUsecase.NewAuthUsecase(cfg)
	if authUc.Enabled() {
		log.Println("[Server] Bearer token auth enabled")
	}

	return &Handler{
		authUsecase:     authUc,
		config:          cfg,
		taskHandler:     taskDelivery.NewTaskHandler(taskUc),
		settingsHandler: NewSettingsHandler(settings, pinger),
	}
}

// Router builds the gin engine with middleware and routes
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	SetupRoutes(r, h.config.APIPrefix, h.authUsecase, h.taskHandler, h.settingsHandler)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (h *Handler) Start(ctx context.Context, addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   h.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func defaultBaseURL(cfg *config.Config) string {
	switch ai.ProviderType(cfg.AIProvider) {
	case ai.ProviderGemini:
		return gemini.DefaultBaseURL
	case ai.ProviderAnthropic:
		// the SDK picks its own endpoint
		return ""
	default:
		return cfg.OllamaBaseURL
	}
}

func defaultModel(cfg *config.Config) string {
	switch ai.ProviderType(cfg.AIProvider) {
	case ai.ProviderGemini:
		return cfg.GeminiModel
	case ai.ProviderAnthropic:
		return cfg.AnthropicModel
	default:
		return cfg.OllamaModel
	}
}
