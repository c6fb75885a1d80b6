package ai

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicService implements ChatClient with the Anthropic Messages API
type AnthropicService struct {
	client   anthropic.Client
	getModel func() string
}

// NewAnthropicService creates a client that never retries on its own
func NewAnthropicService(apiKey string, getModel func() string, opts ...option.RequestOption) *AnthropicService {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &AnthropicService{
		client:   anthropic.NewClient(append(base, opts...)...),
		getModel: getModel,
	}
}

func (a *AnthropicService) Name() string {
	return string(ProviderAnthropic)
}

func (a *AnthropicService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = a.getModel()
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	// The Messages API has no JSON mode
	if req.Format == ResponseFormatJSON {
		system = append(system, anthropic.TextBlockParam{Text: "Respond with a single JSON object and nothing else."})
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", wrapError("anthropic", err)
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	return output.String(), nil
}
