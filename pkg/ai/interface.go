package ai

import (
	"context"
)

// ResponseFormatJSON asks the provider to constrain its reply to JSON
const ResponseFormatJSON = "json"

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user turn
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// ChatRequest is a single non-streaming completion request.
// An empty Model selects the provider's configured model.
type ChatRequest struct {
	Model    string
	Messages []Message
	Format   string
}

// ChatClient is the interface for LLM completions.
// Implement this interface to add new AI providers (Ollama, Gemini, Anthropic, etc.)
type ChatClient interface {
	// Chat returns the raw text of the model's reply
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

// Pinger is implemented by clients that can probe their endpoint cheaply
type Pinger interface {
	Ping(ctx context.Context, baseURL string) error
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOllama    ProviderType = "ollama"
	ProviderGemini    ProviderType = "gemini"
	ProviderAnthropic ProviderType = "anthropic"
)
