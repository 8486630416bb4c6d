// File: internal/usecase/saver.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain/ports/repository"
)

// DefaultDebounce is the deferred-save coalescing window.
const DefaultDebounce = time.Second

// SnapshotSaver writes store snapshots through a SnapshotRepository.
// SaveNow runs synchronously; SaveSoon coalesces rapid requests so that only
// the last one scheduled within the debounce window performs a physical
// write, using the store state as of when the timer fires.
type SnapshotSaver struct {
	store    *ConversationStore
	repo     repository.SnapshotRepository
	debounce time.Duration
	log      *zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	closed  bool
}

func NewSnapshotSaver(store *ConversationStore, repo repository.SnapshotRepository, debounce time.Duration, logger *zerolog.Logger) *SnapshotSaver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	l := logger.With().Str("component", "SnapshotSaver").Logger()
	return &SnapshotSaver{
		store:    store,
		repo:     repo,
		debounce: debounce,
		log:      &l,
	}
}

// SaveNow snapshots the store and writes it synchronously. A scheduled
// deferred save is cancelled since its state is now covered. Failures are
// logged and returned; callers on the chat path ignore them so a broken
// backend degrades the system to in-memory only.
func (s *SnapshotSaver) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	s.mu.Unlock()

	snap := s.store.Snapshot()
	snap.LastSaved = time.Now()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Error().Err(err).Int("sessions", len(snap.Metadata)).Msg("snapshot save failed")
		return err
	}
	return nil
}

// SaveSoon schedules a deferred save. Repeated calls within the debounce
// window cancel and reschedule, so only the last one fires.
func (s *SnapshotSaver) SaveSoon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = true
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *SnapshotSaver) fire() {
	s.mu.Lock()
	if s.closed || !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	_ = s.SaveNow(context.Background())
}

// Clear cancels any scheduled save and purges the persisted snapshot.
func (s *SnapshotSaver) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	s.mu.Unlock()
	return s.repo.Clear(ctx)
}

// Close stops the debounce timer; a still-pending deferred save is flushed
// synchronously so shutdown never drops the last turns.
func (s *SnapshotSaver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	hadPending := s.pending
	s.pending = false
	s.mu.Unlock()

	if hadPending {
		snap := s.store.Snapshot()
		snap.LastSaved = time.Now()
		if err := s.repo.Save(ctx, snap); err != nil {
			s.log.Error().Err(err).Msg("final snapshot save failed")
			return err
		}
	}
	return nil
}
