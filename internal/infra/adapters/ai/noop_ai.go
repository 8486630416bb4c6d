package ai

import (
	"context"
	"time"

	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs
// without a provider key. It returns a canned reply after a small delay.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Name() string { return "noop" }

func (a *NoopAIAdapter) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	return total / 4, nil
}

func (a *NoopAIAdapter) Generate(ctx context.Context, system string, messages []adapter.Message, maxTokens int) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "meow, this is a noop reply (^._.^)", nil
}
