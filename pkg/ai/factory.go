package ai

import (
	"fmt"

	"taskpilot-backend/pkg/gemini"

	"github.com/anthropics/anthropic-sdk-go/option"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "ollama", "gemini" or "anthropic"

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "gemma3:4b"
	OllamaAPIKey  string

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Anthropic config
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
}

// DynamicConfig lets the base URL and model be changed at runtime.
// Getters that are nil fall back to the static values in Config.
type DynamicConfig struct {
	Config
	GetBaseURL func() string
	GetModel   func() string
}

// NewChatClient creates a ChatClient based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewChatClient(cfg Config) (ChatClient, error) {
	return NewChatClientWithDynamicConfig(DynamicConfig{Config: cfg})
}

// NewChatClientWithDynamicConfig is NewChatClient with runtime-updatable settings
func NewChatClientWithDynamicConfig(cfg DynamicConfig) (ChatClient, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaServiceWithGetters(
			getterOr(cfg.GetBaseURL, orDefault(cfg.OllamaBaseURL, "http://localhost:11434")),
			getterOr(cfg.GetModel, orDefault(cfg.OllamaModel, "gemma3:4b")),
			cfg.OllamaAPIKey,
		), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		svc := gemini.NewGeminiServiceWithBaseURL(cfg.GeminiAPIKey, getterOr(cfg.GetBaseURL, gemini.DefaultBaseURL))
		return newGeminiClient(svc, getterOr(cfg.GetModel, orDefault(cfg.GeminiModel, "gemini-2.5-flash"))), nil

	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		var opts []option.RequestOption
		if cfg.AnthropicBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.AnthropicBaseURL))
		}
		return NewAnthropicService(
			cfg.AnthropicAPIKey,
			getterOr(cfg.GetModel, orDefault(cfg.AnthropicModel, "claude-sonnet-4-20250514")),
			opts...,
		), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// getterOr returns get, or a getter of fallback when get is nil or yields ""
func getterOr(get func() string, fallback string) func() string {
	return func() string {
		if get != nil {
			if v := get(); v != "" {
				return v
			}
		}
		return fallback
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
