package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Turn is one message of a conversation; Role is "user" or "model"
type Turn struct {
	Role string
	Text string
}

type GeminiService struct {
	ApiKey     string
	getBaseURL func() string
	httpClient *http.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	return NewGeminiServiceWithBaseURL(apiKey, func() string { return DefaultBaseURL })
}

// NewGeminiServiceWithBaseURL points the service at another endpoint (proxies, tests)
func NewGeminiServiceWithBaseURL(apiKey string, getBaseURL func() string) *GeminiService {
	return &GeminiService{ApiKey: apiKey, getBaseURL: getBaseURL, httpClient: &http.Client{}}
}

func (g *GeminiService) baseURL() string {
	if u := g.getBaseURL(); u != "" {
		return strings.TrimSuffix(u, "/")
	}
	return DefaultBaseURL
}

// GenerateContent runs one generateContent call and returns the first candidate's text.
// jsonMode sets responseMimeType to application/json.
func (g *GeminiService) GenerateContent(ctx context.Context, model string, turns []Turn, jsonMode bool) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL(), model, g.ApiKey)

	contents := make([]map[string]interface{}, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, map[string]interface{}{
			"role":  t.Role,
			"parts": []map[string]string{{"text": t.Text}},
		})
	}
	payload := map[string]interface{}{
		"contents": contents,
	}
	if jsonMode {
		payload["generationConfig"] = map[string]interface{}{
			"responseMimeType": "application/json",
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) > 0 {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}
	return "", fmt.Errorf("no content returned")
}

// Ping fetches the model's metadata to verify the key and endpoint
func (g *GeminiService) Ping(ctx context.Context, model string) error {
	url := fmt.Sprintf("%s/models/%s?key=%s", g.baseURL(), model, g.ApiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Gemini returned status %d", resp.StatusCode)
	}
	return nil
}
