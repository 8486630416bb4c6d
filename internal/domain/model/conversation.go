package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionStatusActive is the only status this version assigns; sessions never
// transition out of it.
const SessionStatusActive = "ACTIVE"

// Message is one turn inside a conversation.
type Message struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the raw ordered message list for one session. The session
// identifier is opaque and supplied by the client, never generated here.
type Conversation struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Messages:  make([]Message, 0, 8),
	}
}

// Append adds a message stamped with now and returns it.
func (c *Conversation) Append(role, content string, now time.Time) Message {
	m := Message{Role: role, Content: content, Timestamp: now}
	c.Messages = append(c.Messages, m)
	return m
}

// RecentWindow returns the last n messages in role/content-only form, ready
// to be sent to the model. Timestamps are deliberately stripped.
func (c *Conversation) RecentWindow(n int) []Message {
	msgs := c.Messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (c *Conversation) Clone() *Conversation {
	cp := &Conversation{SessionID: c.SessionID, Messages: make([]Message, len(c.Messages))}
	copy(cp.Messages, c.Messages)
	return cp
}

// SessionMetadata is the bookkeeping record kept alongside a Conversation.
// It carries its own copy of the message list so the persisted document is
// self-contained for the read path.
type SessionMetadata struct {
	SessionID    string    `json:"sessionId"`
	ID           string    `json:"id"` // display id, e.g. #LEO-20250101093045-a7f
	Status       string    `json:"status"`
	FirstMessage string    `json:"firstMessage"`
	MessageCount int       `json:"messageCount"`
	StartTime    time.Time `json:"startTime"`
	LastMessage  time.Time `json:"lastMessage"`
	Duration     int64     `json:"duration"` // whole seconds since StartTime
	Messages     []Message `json:"messages"`
}

func NewSessionMetadata(sessionID, firstMessage string, now time.Time) *SessionMetadata {
	return &SessionMetadata{
		SessionID:    sessionID,
		ID:           DisplayID(sessionID, now),
		Status:       SessionStatusActive,
		FirstMessage: firstMessage,
		StartTime:    now,
		LastMessage:  now,
		Messages:     make([]Message, 0, 8),
	}
}

// Record appends a copy of msg to the metadata's message list and refreshes
// the counters. Copies are taken here so later mutation of the live message
// cannot retroactively alter recorded history.
func (m *SessionMetadata) Record(msg Message) {
	m.Messages = append(m.Messages, msg)
	m.MessageCount++
	m.LastMessage = msg.Timestamp
	m.Duration = int64(m.LastMessage.Sub(m.StartTime) / time.Second)
}

func (m *SessionMetadata) Clone() *SessionMetadata {
	cp := *m
	cp.Messages = make([]Message, len(m.Messages))
	copy(cp.Messages, m.Messages)
	return &cp
}

// DisplayID synthesizes the human-facing session id: a compact UTC timestamp
// plus the last three characters of the session identifier, left-padded with
// zeros when the identifier is shorter.
func DisplayID(sessionID string, now time.Time) string {
	suffix := sessionID
	if len(suffix) > 3 {
		suffix = suffix[len(suffix)-3:]
	}
	if len(suffix) < 3 {
		suffix = strings.Repeat("0", 3-len(suffix)) + suffix
	}
	return fmt.Sprintf("#LEO-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

// Snapshot is a full point-in-time serialization of every session. Snapshots
// are whole, never incremental, so any writer within a debounce window
// produces a complete file.
type Snapshot struct {
	Metadata      []*SessionMetadata `json:"metadata"`
	Conversations []*Conversation    `json:"conversations"`
	LastSaved     time.Time          `json:"lastSaved"`
}
