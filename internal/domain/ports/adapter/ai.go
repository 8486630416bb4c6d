package adapter

import "context"

// Message represents a chat message sent to the model.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// AIServiceAdapter is the port for LLM text generation.
type AIServiceAdapter interface {
	// Name identifies the provider for logs and metric labels.
	Name() string

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, messages []Message) (int, error)

	// Generate returns only the assistant text produced for the given system
	// prompt and message window. maxTokens bounds the model's output.
	Generate(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)
}
