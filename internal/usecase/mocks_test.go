//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Mock AI adapter

var _ adapter.AIServiceAdapter = (*MockAIAdapter)(nil)

type MockAIAdapter struct {
	GenerateFunc    func(ctx context.Context, system string, messages []adapter.Message, maxTokens int) (string, error)
	CountTokensFunc func(ctx context.Context, messages []adapter.Message) (int, error)

	mu            sync.Mutex
	generateCalls [][]adapter.Message
}

func (m *MockAIAdapter) Name() string { return "mock" }

func (m *MockAIAdapter) CountTokens(ctx context.Context, messages []adapter.Message) (int, error) {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, messages)
	}
	return len(messages), nil
}

func (m *MockAIAdapter) Generate(ctx context.Context, system string, messages []adapter.Message, maxTokens int) (string, error) {
	m.mu.Lock()
	cp := make([]adapter.Message, len(messages))
	copy(cp, messages)
	m.generateCalls = append(m.generateCalls, cp)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, messages, maxTokens)
	}
	return "meow", nil
}

// LastWindow returns the message window of the most recent Generate call.
func (m *MockAIAdapter) LastWindow() []adapter.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.generateCalls) == 0 {
		return nil
	}
	return m.generateCalls[len(m.generateCalls)-1]
}

// --- Mock snapshot repository

var _ repository.SnapshotRepository = (*MockSnapshotRepo)(nil)

type MockSnapshotRepo struct {
	SaveFunc  func(ctx context.Context, snap *model.Snapshot) error
	ClearFunc func(ctx context.Context) error

	saves  atomic.Int64
	clears atomic.Int64

	mu   sync.Mutex
	last *model.Snapshot
}

func (m *MockSnapshotRepo) Load(ctx context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return &model.Snapshot{}, nil
	}
	return m.last, nil
}

func (m *MockSnapshotRepo) Save(ctx context.Context, snap *model.Snapshot) error {
	m.saves.Add(1)
	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snap)
	}
	return nil
}

func (m *MockSnapshotRepo) Clear(ctx context.Context) error {
	m.clears.Add(1)
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

func (m *MockSnapshotRepo) SaveCount() int  { return int(m.saves.Load()) }
func (m *MockSnapshotRepo) ClearCount() int { return int(m.clears.Load()) }

func (m *MockSnapshotRepo) LastSnapshot() *model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
