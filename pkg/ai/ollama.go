package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements ChatClient using the Ollama chat API
type OllamaService struct {
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
	apiKey     string        // Bearer token for hosted Ollama, optional
	httpClient *http.Client
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model, apiKey string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "gemma3:4b"
	}
	return NewOllamaServiceWithGetters(
		func() string { return baseURL },
		func() string { return model },
		apiKey,
	)
}

// NewOllamaServiceWithGetters creates a new Ollama service with dynamic getters
func NewOllamaServiceWithGetters(getBaseURL, getModel func() string, apiKey string) *OllamaService {
	return &OllamaService{
		getBaseURL: getBaseURL,
		getModel:   getModel,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

func (o *OllamaService) Name() string {
	return string(ProviderOllama)
}

// Chat implements ChatClient
func (o *OllamaService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	url := strings.TrimSuffix(o.getBaseURL(), "/") + "/api/chat"

	model := req.Model
	if model == "" {
		model = o.getModel()
	}

	payload := map[string]interface{}{
		"model":    model,
		"messages": req.Messages,
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": 0.2,
		},
	}
	if req.Format != "" {
		payload["format"] = req.Format
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", wrapError("ollama", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapError("ollama", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message Message `json:"message"`
		Done    bool    `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Message.Content, nil
}

// Ping checks that the Ollama server answers on /api/tags.
// An empty baseURL probes the configured one.
func (o *OllamaService) Ping(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		baseURL = o.getBaseURL()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/api/tags", nil)
	if err != nil {
		return err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return wrapError("ollama", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}
