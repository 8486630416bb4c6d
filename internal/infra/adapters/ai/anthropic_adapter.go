package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*AnthropicAdapter)(nil)

const anthropicVersion = "2023-06-01"

// AnthropicAdapter implements adapter.AIServiceAdapter against the Anthropic
// Messages API. The system prompt travels in the top-level "system" field,
// not as a message.
type AnthropicAdapter struct {
	apiKey string
	base   string // e.g., https://api.anthropic.com/v1
	model  string
	client *http.Client
}

func NewAnthropicAdapter(apiKey, model string) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key empty")
	}
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &AnthropicAdapter{
		apiKey: apiKey,
		base:   "https://api.anthropic.com/v1",
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *AnthropicAdapter) Name() string { return "anthropic" }

// CountTokens is a chars/4 estimate; Anthropic has no local tokenizer.
func (a *AnthropicAdapter) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	return total / 4, nil
}

func (a *AnthropicAdapter) Generate(ctx context.Context, system string, messages []adapter.Message, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 200
	}

	reqBody := struct {
		Model     string            `json:"model"`
		MaxTokens int               `json:"max_tokens"`
		System    string            `json:"system,omitempty"`
		Messages  []adapter.Message `json:"messages"`
	}{Model: a.model, MaxTokens: maxTokens, System: system, Messages: messages}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/messages", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("anthropic http %d", resp.StatusCode)
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Content {
		if c.Text != "" {
			return c.Text, nil
		}
	}
	return "", errors.New("no content block")
}
