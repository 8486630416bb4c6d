//go:build !integration

package sched

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type fakeAI struct {
	reply string
	err   error
}

func (f *fakeAI) Name() string { return "fake" }
func (f *fakeAI) CountTokens(ctx context.Context, msgs []adapter.Message) (int, error) {
	return len(msgs), nil
}
func (f *fakeAI) Generate(ctx context.Context, system string, msgs []adapter.Message, maxTokens int) (string, error) {
	return f.reply, f.err
}

type fakePoster struct {
	err   error
	posts []string
}

func (f *fakePoster) Name() string { return "fake" }
func (f *fakePoster) Publish(ctx context.Context, text string) (*adapter.PostReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.posts = append(f.posts, text)
	return &adapter.PostReceipt{Platform: "fake", PostID: "p-1"}, nil
}

func TestTruncatePost(t *testing.T) {
	t.Run("should leave short posts untouched", func(t *testing.T) {
		if got := truncatePost("meow", 200); got != "meow" {
			t.Errorf("expected unchanged post, got %q", got)
		}
	})

	t.Run("should cap long posts at 200 runes with a trailing ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 250)
		got := truncatePost(long, maxPostRunes)
		if n := len([]rune(got)); n != 200 {
			t.Fatalf("expected 200 runes, got %d", n)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected truncated post to end with ellipsis, got %q", got[190:])
		}
	})

	t.Run("should count runes not bytes", func(t *testing.T) {
		long := strings.Repeat("猫", 250)
		got := truncatePost(long, maxPostRunes)
		if n := len([]rune(got)); n != 200 {
			t.Errorf("expected 200 runes for multibyte input, got %d", n)
		}
	})
}

func TestPostingWorker_Cycle(t *testing.T) {
	ctx := context.Background()

	t.Run("should publish the truncated post", func(t *testing.T) {
		ai := &fakeAI{reply: strings.Repeat("x", 250)}
		poster := &fakePoster{}
		store := usecase.NewConversationStore(10)
		w := NewPostingWorker(time.Hour, store, ai, poster, nil, 100, newTestLogger())

		w.cycle(ctx)

		if len(poster.posts) != 1 {
			t.Fatalf("expected 1 post, got %d", len(poster.posts))
		}
		if n := len([]rune(poster.posts[0])); n != 200 {
			t.Errorf("expected the published post to be capped at 200 runes, got %d", n)
		}
	})

	t.Run("should skip when generation yields nothing", func(t *testing.T) {
		ai := &fakeAI{reply: "   "}
		poster := &fakePoster{}
		w := NewPostingWorker(time.Hour, usecase.NewConversationStore(10), ai, poster, nil, 100, newTestLogger())

		w.cycle(ctx)

		if len(poster.posts) != 0 {
			t.Errorf("expected no post for blank generation, got %d", len(poster.posts))
		}
	})

	t.Run("should treat a platform rate limit as a quiet skip", func(t *testing.T) {
		ai := &fakeAI{reply: "a fine post"}
		poster := &fakePoster{err: &domain.RateLimitedError{Platform: "x", AppRemaining: "0"}}
		w := NewPostingWorker(time.Hour, usecase.NewConversationStore(10), ai, poster, nil, 100, newTestLogger())

		// Must not panic and must not retry within the cycle.
		w.cycle(ctx)
		if len(poster.posts) != 0 {
			t.Errorf("expected no successful post under rate limiting, got %d", len(poster.posts))
		}
	})
}

func TestPostingWorker_RunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewPostingWorker(time.Hour, usecase.NewConversationStore(10), &fakeAI{reply: "m"}, &fakePoster{}, nil, 100, newTestLogger())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestPostingWorker_SkipsOverlappingCycles(t *testing.T) {
	w := NewPostingWorker(time.Hour, usecase.NewConversationStore(10), &fakeAI{reply: "m"}, &fakePoster{}, nil, 100, newTestLogger())

	if !w.inFlight.CompareAndSwap(false, true) {
		t.Fatal("expected the guard to be free initially")
	}
	// A second acquisition while a cycle runs must fail.
	if w.inFlight.CompareAndSwap(false, true) {
		t.Fatal("expected the guard to reject a concurrent cycle")
	}
	w.inFlight.Store(false)
	if !w.inFlight.CompareAndSwap(false, true) {
		t.Fatal("expected the guard to be reusable after release")
	}
}
