package repository

import (
	"context"

	"github.com/leorestored/leo-restored/internal/domain/model"
)

// SnapshotRepository durably stores and retrieves the full conversation
// snapshot. Implementations exist for a Postgres document store and a flat
// JSON file; the rest of the system is backend-agnostic.
type SnapshotRepository interface {
	// Load reads the whole snapshot. A missing backing store yields an empty
	// snapshot, not an error.
	Load(ctx context.Context) (*model.Snapshot, error)

	// Save writes the whole snapshot, replacing whatever was stored before.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Clear removes all persisted state.
	Clear(ctx context.Context) error
}
