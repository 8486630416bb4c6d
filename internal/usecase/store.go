// File: internal/usecase/store.go
package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/infra/metrics"
)

// DefaultCapacity bounds the number of live sessions before insertion-order
// eviction kicks in.
const DefaultCapacity = 100

// ConversationStore owns every live Conversation and its SessionMetadata.
// It is constructed at startup and injected into the chat orchestrator and
// the posting worker; there is no package-level instance.
type ConversationStore struct {
	mu       sync.Mutex
	capacity int
	order    []string // session ids in insertion order, oldest first
	convs    map[string]*model.Conversation
	meta     map[string]*model.SessionMetadata
}

func NewConversationStore(capacity int) *ConversationStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ConversationStore{
		capacity: capacity,
		convs:    make(map[string]*model.Conversation),
		meta:     make(map[string]*model.SessionMetadata),
	}
}

// GetOrCreate returns the metadata for sessionID, creating the session and
// metadata pair on first contact. firstMessage is recorded verbatim on the
// new metadata and never updated afterwards.
func (s *ConversationStore) GetOrCreate(sessionID, firstMessage string) (*model.SessionMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.meta[sessionID]; ok {
		return m, false
	}
	now := time.Now()
	s.convs[sessionID] = model.NewConversation(sessionID)
	m := model.NewSessionMetadata(sessionID, firstMessage, now)
	s.meta[sessionID] = m
	s.order = append(s.order, sessionID)
	metrics.SetLiveSessions(len(s.order))
	return m, true
}

// Append adds a message to the session and records a copy on its metadata.
// The caller must have created the session via GetOrCreate first.
func (s *ConversationStore) Append(sessionID, role, content string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[sessionID]
	if !ok {
		return time.Time{}, fmt.Errorf("append %q: %w", sessionID, domain.ErrSessionNotFound)
	}
	msg := c.Append(role, content, time.Now())
	s.meta[sessionID].Record(msg)
	return msg.Timestamp, nil
}

// RecentWindow returns the last n messages in role/content-only form,
// ready for the model adapter. Unknown sessions yield an empty window.
func (s *ConversationStore) RecentWindow(sessionID string, n int) []adapter.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[sessionID]
	if !ok {
		return nil
	}
	win := c.RecentWindow(n)
	out := make([]adapter.Message, 0, len(win))
	for _, m := range win {
		out = append(out, adapter.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// EvictIfOverCapacity removes oldest-inserted sessions (with their metadata)
// until the live count is back within capacity. Insertion order, not
// last-access order. Returns the number of sessions removed.
func (s *ConversationStore) EvictIfOverCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.convs, oldest)
		delete(s.meta, oldest)
		evicted++
	}
	if evicted > 0 {
		metrics.AddEvicted(evicted)
		metrics.SetLiveSessions(len(s.order))
	}
	return evicted
}

// AllMetadata returns a deep copy of every metadata record in insertion
// order; callers sort for display.
func (s *ConversationStore) AllMetadata() []*model.SessionMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.SessionMetadata, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.meta[id].Clone())
	}
	return out
}

func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.convs = make(map[string]*model.Conversation)
	s.meta = make(map[string]*model.SessionMetadata)
	metrics.SetLiveSessions(0)
}

// Snapshot produces a deep-copied point-in-time serialization of the store.
func (s *ConversationStore) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &model.Snapshot{
		Metadata:      make([]*model.SessionMetadata, 0, len(s.order)),
		Conversations: make([]*model.Conversation, 0, len(s.order)),
	}
	for _, id := range s.order {
		snap.Metadata = append(snap.Metadata, s.meta[id].Clone())
		snap.Conversations = append(snap.Conversations, s.convs[id].Clone())
	}
	return snap
}

// Restore hydrates the store from a loaded snapshot, replacing any current
// state. Metadata order in the snapshot defines insertion order. Sessions
// beyond capacity are dropped oldest-first on the next eviction pass.
func (s *ConversationStore) Restore(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.convs = make(map[string]*model.Conversation)
	s.meta = make(map[string]*model.SessionMetadata)

	byID := make(map[string]*model.Conversation, len(snap.Conversations))
	for _, c := range snap.Conversations {
		byID[c.SessionID] = c
	}
	for _, m := range snap.Metadata {
		if m == nil || m.SessionID == "" {
			continue
		}
		c, ok := byID[m.SessionID]
		if !ok {
			c = model.NewConversation(m.SessionID)
		}
		s.meta[m.SessionID] = m.Clone()
		s.convs[m.SessionID] = c.Clone()
		s.order = append(s.order, m.SessionID)
	}
	metrics.SetLiveSessions(len(s.order))
}

// RecentContext renders previews of every session whose last message falls
// within the window: per session the last perSession messages as
// "role: content" (content capped at maxChars runes) joined by " | ",
// sessions joined by newline. Empty string when nothing qualifies.
func (s *ConversationStore) RecentContext(window time.Duration, perSession, maxChars int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-window)
	var previews []string
	for _, id := range s.order {
		m := s.meta[id]
		if m.LastMessage.Before(cutoff) {
			continue
		}
		msgs := m.Messages
		if perSession > 0 && len(msgs) > perSession {
			msgs = msgs[len(msgs)-perSession:]
		}
		parts := make([]string, 0, len(msgs))
		for _, msg := range msgs {
			content := msg.Content
			if runes := []rune(content); maxChars > 0 && len(runes) > maxChars {
				content = string(runes[:maxChars])
			}
			parts = append(parts, msg.Role+": "+content)
		}
		if len(parts) > 0 {
			previews = append(previews, strings.Join(parts, " | "))
		}
	}
	return strings.Join(previews, "\n")
}
