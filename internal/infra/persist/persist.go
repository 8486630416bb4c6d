// Package persist selects the snapshot backend once at startup: the Postgres
// document store when configured and reachable, the flat file otherwise.
// Absence of a database URL and connection failures both degrade silently to
// the file store; nothing past this constructor knows which backend runs.
package persist

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/config"
	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/repository"
	"github.com/leorestored/leo-restored/internal/infra/db/jsonfile"
	"github.com/leorestored/leo-restored/internal/infra/db/postgres"
)

// New returns the selected repository and a close function for any held
// connections. It never fails: every degradation path ends at the file store.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.SnapshotRepository, func()) {
	file := jsonfile.NewSnapshotRepo(cfg.Storage.File, logger)
	if cfg.Database.URL == "" {
		return file, func() {}
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Warn().Err(err).Msg("document store unreachable; using file store")
		return file, func() {}
	}
	remote := postgres.NewSnapshotRepo(pool)
	if err := remote.EnsureSchema(ctx); err != nil {
		logger.Warn().Err(err).Msg("document store schema failed; using file store")
		pool.Close()
		return file, func() {}
	}
	logger.Info().Msg("snapshot backend: postgres (file fallback)")
	return NewFallback(remote, file, logger), pool.Close
}

// Fallback tries the remote store first and falls back to the file store on
// any remote failure, per operation.
var _ repository.SnapshotRepository = (*Fallback)(nil)

type Fallback struct {
	remote repository.SnapshotRepository
	file   repository.SnapshotRepository
	log    *zerolog.Logger
}

func NewFallback(remote, file repository.SnapshotRepository, logger *zerolog.Logger) *Fallback {
	l := logger.With().Str("component", "SnapshotFallback").Logger()
	return &Fallback{remote: remote, file: file, log: &l}
}

func (f *Fallback) Load(ctx context.Context) (*model.Snapshot, error) {
	snap, err := f.remote.Load(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("remote load failed; falling back to file")
		return f.file.Load(ctx)
	}
	return snap, nil
}

func (f *Fallback) Save(ctx context.Context, snap *model.Snapshot) error {
	if err := f.remote.Save(ctx, snap); err != nil {
		f.log.Warn().Err(err).Msg("remote save failed; falling back to file")
		return f.file.Save(ctx, snap)
	}
	return nil
}

// Clear purges both backends. The remote purge is best-effort: a failure is
// logged but does not mask the file result.
func (f *Fallback) Clear(ctx context.Context) error {
	if err := f.remote.Clear(ctx); err != nil {
		f.log.Warn().Err(err).Msg("remote clear failed")
	}
	return f.file.Clear(ctx)
}
