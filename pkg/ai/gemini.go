package ai

import (
	"context"

	"taskpilot-backend/pkg/gemini"
)

// geminiClient adapts gemini.GeminiService to ChatClient
type geminiClient struct {
	svc      *gemini.GeminiService
	getModel func() string
}

func newGeminiClient(svc *gemini.GeminiService, getModel func() string) *geminiClient {
	return &geminiClient{svc: svc, getModel: getModel}
}

func (g *geminiClient) Name() string {
	return string(ProviderGemini)
}

func (g *geminiClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.getModel()
	}

	turns := make([]gemini.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		turns = append(turns, gemini.Turn{Role: role, Text: m.Content})
	}

	text, err := g.svc.GenerateContent(ctx, model, turns, req.Format == ResponseFormatJSON)
	if err != nil {
		return "", wrapError("gemini", err)
	}
	return text, nil
}

// Ping ignores baseURL; the Gemini endpoint is fixed at construction
func (g *geminiClient) Ping(ctx context.Context, _ string) error {
	if err := g.svc.Ping(ctx, g.getModel()); err != nil {
		return wrapError("gemini", err)
	}
	return nil
}
