package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"taskpilot-backend/internal/task/delivery"
	"taskpilot-backend/pkg/ai"
	"taskpilot-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable AI settings
type RuntimeConfig struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"base_url"`
	Model    string `json:"model,omitempty"`
}

// RuntimeSettings guards the RuntimeConfig read by the AI client on every call
type RuntimeSettings struct {
	mu  sync.RWMutex
	cfg RuntimeConfig
}

// NewRuntimeSettings initializes runtime config from static config
func NewRuntimeSettings(provider, baseURL, model string) *RuntimeSettings {
	return &RuntimeSettings{cfg: RuntimeConfig{Provider: provider, BaseURL: baseURL, Model: model}}
}

func (s *RuntimeSettings) Get() RuntimeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// BaseURL returns the current runtime base URL
func (s *RuntimeSettings) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.BaseURL
}

// Model returns the current runtime model
func (s *RuntimeSettings) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Model
}

func (s *RuntimeSettings) update(baseURL, model string) RuntimeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.BaseURL = baseURL
	if model != "" {
		s.cfg.Model = model
	}
	return s.cfg
}

// UpdateAISettingsRequest represents the request body for updating AI settings
type UpdateAISettingsRequest struct {
	BaseURL string `json:"base_url" binding:"required"`
	Model   string `json:"model,omitempty"`
}

// SettingsHandler serves the runtime AI settings endpoints
type SettingsHandler struct {
	settings *RuntimeSettings
	pinger   ai.Pinger
}

// NewSettingsHandler creates a SettingsHandler; pinger may be nil
func NewSettingsHandler(settings *RuntimeSettings, pinger ai.Pinger) *SettingsHandler {
	return &SettingsHandler{settings: settings, pinger: pinger}
}

// GetAISettings returns current AI configuration
// GET /settings/ai
func (h *SettingsHandler) GetAISettings(c *gin.Context) {
	response.OK(c, http.StatusOK, h.settings.Get(), "AI settings retrieved")
}

// UpdateAISettings updates AI configuration at runtime
// PUT /settings/ai
func (h *SettingsHandler) UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, delivery.CodeInvalidData, err.Error())
		return
	}

	baseURL := strings.TrimSuffix(strings.TrimSpace(req.BaseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		response.Fail(c, http.StatusBadRequest, delivery.CodeInvalidData, "base_url must start with http:// or https://")
		return
	}

	cfg := h.settings.update(baseURL, strings.TrimSpace(req.Model))
	response.OK(c, http.StatusOK, cfg, "AI settings updated successfully")
}

// TestAIConnection tests if the AI endpoint is reachable
// POST /settings/ai/test
func (h *SettingsHandler) TestAIConnection(c *gin.Context) {
	var req struct {
		BaseURL string `json:"base_url"`
	}
	// If no body provided, use current config
	_ = c.ShouldBindJSON(&req)
	if req.BaseURL == "" {
		req.BaseURL = h.settings.BaseURL()
	}

	if h.pinger == nil {
		response.Fail(c, http.StatusServiceUnavailable, delivery.CodeAIServiceUnavailable, "AI provider does not support connection tests")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx, req.BaseURL); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, delivery.CodeAIServiceUnavailable, err.Error())
		return
	}

	response.OK(c, http.StatusOK, gin.H{"connected": true, "base_url": req.BaseURL}, "AI service is reachable")
}
