// File: internal/infra/sched/posting_worker.go
package sched

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	"github.com/leorestored/leo-restored/internal/infra/metrics"
	red "github.com/leorestored/leo-restored/internal/infra/redis"
	"github.com/leorestored/leo-restored/internal/persona"
	"github.com/leorestored/leo-restored/internal/usecase"
)

const (
	// maxPostRunes is the hard application-level cap on post length,
	// independent of the model's own output limit.
	maxPostRunes = 200
	ellipsis     = "..."

	contextWindow   = 5 * time.Minute
	previewMessages = 5
	previewChars    = 80

	cycleTimeout = 2 * time.Minute
)

// PostingWorker periodically synthesizes one short post from recent
// conversations and publishes it. Failures are never retried within a cycle;
// the next firing tries again.
type PostingWorker struct {
	interval  time.Duration
	store     *usecase.ConversationStore
	ai        adapter.AIServiceAdapter
	poster    adapter.SocialPoster
	budget    *red.PostBudget // nil when redis is not configured
	maxTokens int
	log       *zerolog.Logger

	inFlight atomic.Bool
}

func NewPostingWorker(interval time.Duration, store *usecase.ConversationStore, ai adapter.AIServiceAdapter, poster adapter.SocialPoster, budget *red.PostBudget, maxTokens int, logger *zerolog.Logger) *PostingWorker {
	if interval <= 0 {
		interval = 85 * time.Minute
	}
	if maxTokens <= 0 {
		maxTokens = 100
	}
	l := logger.With().Str("component", "PostingWorker").Logger()
	return &PostingWorker{
		interval:  interval,
		store:     store,
		ai:        ai,
		poster:    poster,
		budget:    budget,
		maxTokens: maxTokens,
		log:       &l,
	}
}

func (w *PostingWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Str("platform", w.poster.Name()).Msg("starting posting worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping posting worker")
			return ctx.Err()
		case <-ticker.C:
			// Overlapping cycles would double the post rate and breach the
			// external cap, so a tick during a running cycle is dropped.
			if !w.inFlight.CompareAndSwap(false, true) {
				w.log.Warn().Msg("previous posting cycle still running; skipping")
				metrics.IncPost(w.poster.Name(), "skipped")
				continue
			}
			go func() {
				defer w.inFlight.Store(false)
				cctx, cancel := context.WithTimeout(ctx, cycleTimeout)
				defer cancel()
				w.cycle(cctx)
			}()
		}
	}
}

func (w *PostingWorker) cycle(ctx context.Context) {
	log := w.log.With().Str("cycle", ulid.Make().String()).Logger()

	recent := w.store.RecentContext(contextWindow, previewMessages, previewChars)
	prompt := persona.PostingPrompt(recent)

	start := time.Now()
	post, err := w.ai.Generate(ctx, prompt,
		[]adapter.Message{{Role: "user", Content: persona.PostingUserMessage}},
		w.maxTokens)
	metrics.ObserveAICall(w.ai.Name(), time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		log.Error().Err(err).Msg("post generation failed")
		metrics.IncPost(w.poster.Name(), "error")
		return
	}
	post = truncatePost(strings.TrimSpace(post), maxPostRunes)
	if post == "" {
		log.Warn().Msg("empty post generated; skipping")
		metrics.IncPost(w.poster.Name(), "skipped")
		return
	}

	if w.budget != nil {
		ok, err := w.budget.Allow(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("post budget check failed; proceeding")
		} else if !ok {
			log.Warn().Msg("daily post budget exhausted; skipping")
			metrics.IncPost(w.poster.Name(), "skipped")
			return
		}
	}

	receipt, err := w.poster.Publish(ctx, post)
	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		log.Warn().
			Str("app_remaining", rl.AppRemaining).
			Str("user_remaining", rl.UserRemaining).
			Msg("platform rate limit hit; will try again next cycle")
		metrics.IncPost(w.poster.Name(), "rate_limited")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("post failed")
		metrics.IncPost(w.poster.Name(), "error")
		return
	}

	log.Info().
		Str("post_id", receipt.PostID).
		Int("length", len([]rune(post))).
		Msg("posted")
	metrics.IncPost(w.poster.Name(), "ok")
}

// truncatePost caps s at max runes, replacing the tail with an ellipsis
// marker when truncated.
func truncatePost(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}
