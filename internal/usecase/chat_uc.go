// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/infra/logging"
	"github.com/leorestored/leo-restored/internal/infra/metrics"
	"github.com/leorestored/leo-restored/internal/persona"
)

// contextWindow is how many trailing messages are sent to the model.
const contextWindow = 10

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// SendMessage runs one chat turn for the session and returns Leo's reply.
	SendMessage(ctx context.Context, sessionID, message string) (string, error)
	// ListConversations returns all session metadata, most recent first.
	ListConversations(ctx context.Context) []*model.SessionMetadata
	// ClearConversations empties the store and the persisted snapshot.
	ClearConversations(ctx context.Context) error
}

type chatUC struct {
	store          *ConversationStore
	saver          *SnapshotSaver
	ai             adapter.AIServiceAdapter
	maxReplyTokens int
	log            *zerolog.Logger

	// Turns on the same session id serialize on a striped lock held across
	// the whole turn; different sessions proceed in parallel.
	locks [64]sync.Mutex
}

func NewChatUseCase(store *ConversationStore, saver *SnapshotSaver, ai adapter.AIServiceAdapter, maxReplyTokens int, logger *zerolog.Logger) *chatUC {
	if maxReplyTokens <= 0 {
		maxReplyTokens = 200
	}
	l := logger.With().Str("component", "ChatUC").Logger()
	return &chatUC{
		store:          store,
		saver:          saver,
		ai:             ai,
		maxReplyTokens: maxReplyTokens,
		log:            &l,
	}
}

func (c *chatUC) lockSession(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &c.locks[h.Sum32()%uint32(len(c.locks))]
	mu.Lock()
	return mu.Unlock
}

func (c *chatUC) SendMessage(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" || sessionID == "" {
		metrics.IncChatTurn("invalid")
		return "", domain.ErrInvalidArgument
	}

	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "ChatUC.SendMessage")()

	unlock := c.lockSession(sessionID)
	defer unlock()

	meta, created := c.store.GetOrCreate(sessionID, message)
	if created {
		log.Info().Str("display_id", meta.ID).Msg("new session")
		c.saveNow(ctx)
	}

	if _, err := c.store.Append(sessionID, model.RoleUser, message); err != nil {
		metrics.IncChatTurn("error")
		return "", err
	}
	c.saveNow(ctx)

	msgs := c.store.RecentWindow(sessionID, contextWindow)
	if n, err := c.ai.CountTokens(ctx, msgs); err == nil {
		metrics.AddTokensIn(c.ai.Name(), n)
	}

	start := time.Now()
	reply, err := c.ai.Generate(ctx, persona.ChatSystemPrompt(), msgs, c.maxReplyTokens)
	metrics.ObserveAICall(c.ai.Name(), time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		// The user turn stays appended and saved; only the reply is lost.
		log.Error().Err(err).Msg("inference failed")
		metrics.IncChatTurn("error")
		return "", fmt.Errorf("generate reply: %w", err)
	}

	if _, err := c.store.Append(sessionID, model.RoleAssistant, reply); err != nil {
		metrics.IncChatTurn("error")
		return "", err
	}
	c.saveNow(ctx)

	if n := c.store.EvictIfOverCapacity(); n > 0 {
		log.Info().Int("evicted", n).Msg("capacity eviction")
	}

	metrics.IncChatTurn("ok")
	return reply, nil
}

// saveNow requests an immediate save; persistence failures are already
// logged by the saver and must not fail the chat turn.
func (c *chatUC) saveNow(ctx context.Context) {
	_ = c.saver.SaveNow(ctx)
}

func (c *chatUC) ListConversations(ctx context.Context) []*model.SessionMetadata {
	all := c.store.AllMetadata()
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastMessage.After(all[j].LastMessage)
	})
	return all
}

func (c *chatUC) ClearConversations(ctx context.Context) error {
	c.store.Clear()
	if err := c.saver.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted snapshot: %w", err)
	}
	c.log.Info().Msg("conversations cleared")
	return nil
}
