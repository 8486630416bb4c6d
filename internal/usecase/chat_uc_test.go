//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/usecase"
)

type chatUCTestDeps struct {
	store *usecase.ConversationStore
	repo  *MockSnapshotRepo
	saver *usecase.SnapshotSaver
	ai    *MockAIAdapter
}

func newChatUCDeps() *chatUCTestDeps {
	store := usecase.NewConversationStore(100)
	repo := &MockSnapshotRepo{}
	return &chatUCTestDeps{
		store: store,
		repo:  repo,
		saver: usecase.NewSnapshotSaver(store, repo, time.Hour, newTestLogger()),
		ai:    &MockAIAdapter{},
	}
}

func TestChatUseCase_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject blank input", func(t *testing.T) {
		deps := newChatUCDeps()
		uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

		if _, err := uc.SendMessage(ctx, "sess-1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for blank message, got %v", err)
		}
		if _, err := uc.SendMessage(ctx, "", "hi"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty session id, got %v", err)
		}
		if deps.repo.SaveCount() != 0 {
			t.Errorf("expected no saves for rejected input, got %d", deps.repo.SaveCount())
		}
	})

	t.Run("should run a full turn and persist both sides", func(t *testing.T) {
		// --- Arrange ---
		deps := newChatUCDeps()
		deps.ai.GenerateFunc = func(ctx context.Context, system string, msgs []adapter.Message, maxTokens int) (string, error) {
			if system == "" {
				t.Error("expected a system prompt on the chat path")
			}
			return "meow, hello!", nil
		}
		uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

		// --- Act ---
		reply, err := uc.SendMessage(ctx, "sess-1", "hi leo")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if reply != "meow, hello!" {
			t.Errorf("unexpected reply %q", reply)
		}
		// Session creation, user turn, assistant turn: three immediate saves.
		if got := deps.repo.SaveCount(); got != 3 {
			t.Errorf("expected 3 saves across the turn, got %d", got)
		}
		win := deps.store.RecentWindow("sess-1", 10)
		if len(win) != 2 {
			t.Fatalf("expected 2 stored messages, got %d", len(win))
		}
		if win[0].Role != model.RoleUser || win[1].Role != model.RoleAssistant {
			t.Errorf("unexpected roles %q/%q", win[0].Role, win[1].Role)
		}
	})

	t.Run("should keep the user turn when inference fails", func(t *testing.T) {
		deps := newChatUCDeps()
		deps.ai.GenerateFunc = func(ctx context.Context, system string, msgs []adapter.Message, maxTokens int) (string, error) {
			return "", errors.New("provider down")
		}
		uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

		if _, err := uc.SendMessage(ctx, "sess-1", "hi leo"); err == nil {
			t.Fatal("expected an error when the provider fails")
		}

		win := deps.store.RecentWindow("sess-1", 10)
		if len(win) != 1 || win[0].Role != model.RoleUser {
			t.Fatalf("expected only the user turn to survive, got %d messages", len(win))
		}
		// The user turn was saved before the provider call.
		snap := deps.repo.LastSnapshot()
		if snap == nil || len(snap.Conversations) != 1 || len(snap.Conversations[0].Messages) != 1 {
			t.Fatal("expected the persisted snapshot to contain the user turn")
		}
	})

	t.Run("should send at most the last ten messages to the model", func(t *testing.T) {
		deps := newChatUCDeps()
		uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

		for i := 0; i < 8; i++ {
			if _, err := uc.SendMessage(ctx, "sess-1", "ping"); err != nil {
				t.Fatalf("turn %d: %v", i, err)
			}
		}
		// Turn 8: 14 prior messages plus this user turn exceed the window.
		if got := len(deps.ai.LastWindow()); got != 10 {
			t.Errorf("expected a 10-message window, got %d", got)
		}
	})
}

func TestChatUseCase_ListConversations(t *testing.T) {
	ctx := context.Background()
	deps := newChatUCDeps()
	uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

	if _, err := uc.SendMessage(ctx, "sess-old", "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := uc.SendMessage(ctx, "sess-new", "second"); err != nil {
		t.Fatalf("send: %v", err)
	}

	all := uc.ListConversations(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(all))
	}
	if all[0].SessionID != "sess-new" {
		t.Errorf("expected most recent session first, got %q", all[0].SessionID)
	}
}

func TestChatUseCase_ClearConversations(t *testing.T) {
	ctx := context.Background()
	deps := newChatUCDeps()
	uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())

	if _, err := uc.SendMessage(ctx, "sess-1", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := uc.ClearConversations(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deps.store.Len() != 0 {
		t.Errorf("expected empty store after clear, got %d sessions", deps.store.Len())
	}
	if deps.repo.ClearCount() != 1 {
		t.Errorf("expected the persisted snapshot to be purged, got %d clears", deps.repo.ClearCount())
	}

	t.Run("should surface repository clear failures", func(t *testing.T) {
		deps := newChatUCDeps()
		deps.repo.ClearFunc = func(ctx context.Context) error { return errors.New("backend down") }
		uc := usecase.NewChatUseCase(deps.store, deps.saver, deps.ai, 200, newTestLogger())
		if err := uc.ClearConversations(ctx); err == nil {
			t.Error("expected an error when the repository clear fails")
		}
	})
}
