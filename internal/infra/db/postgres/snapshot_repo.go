// File: internal/infra/db/postgres/snapshot_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/domain/ports/repository"
	"github.com/leorestored/leo-restored/internal/infra/metrics"
)

// SnapshotRepo stores the two logical collections (session metadata, session
// conversations) as one JSONB document per session id, upserted
// record-by-record.
var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// EnsureSchema creates both collections if missing.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS session_metadata (
  session_id TEXT PRIMARY KEY,
  doc        JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS session_conversations (
  session_id TEXT PRIMARY KEY,
  doc        JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Save(ctx context.Context, snap *model.Snapshot) error {
	const qMeta = `
INSERT INTO session_metadata (session_id, doc, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (session_id) DO UPDATE SET
  doc = EXCLUDED.doc,
  updated_at = EXCLUDED.updated_at;`
	const qConv = `
INSERT INTO session_conversations (session_id, doc, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (session_id) DO UPDATE SET
  doc = EXCLUDED.doc,
  updated_at = EXCLUDED.updated_at;`

	for _, m := range snap.Metadata {
		doc, err := json.Marshal(m)
		if err != nil {
			metrics.IncSnapshotSave("postgres", false)
			return fmt.Errorf("marshal metadata %s: %w", m.SessionID, err)
		}
		if _, err := r.pool.Exec(ctx, qMeta, m.SessionID, doc); err != nil {
			metrics.IncSnapshotSave("postgres", false)
			return fmt.Errorf("upsert metadata %s: %w", m.SessionID, err)
		}
	}
	for _, c := range snap.Conversations {
		doc, err := json.Marshal(c)
		if err != nil {
			metrics.IncSnapshotSave("postgres", false)
			return fmt.Errorf("marshal conversation %s: %w", c.SessionID, err)
		}
		if _, err := r.pool.Exec(ctx, qConv, c.SessionID, doc); err != nil {
			metrics.IncSnapshotSave("postgres", false)
			return fmt.Errorf("upsert conversation %s: %w", c.SessionID, err)
		}
	}
	metrics.IncSnapshotSave("postgres", true)
	return nil
}

func (r *SnapshotRepo) Load(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	const qMeta = `SELECT doc FROM session_metadata ORDER BY updated_at ASC;`
	rows, err := r.pool.Query(ctx, qMeta)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		var m model.SessionMetadata
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		snap.Metadata = append(snap.Metadata, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metadata rows: %w", err)
	}

	const qConv = `SELECT doc FROM session_conversations ORDER BY updated_at ASC;`
	crows, err := r.pool.Query(ctx, qConv)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var doc []byte
		if err := crows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		var c model.Conversation
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decode conversation: %w", err)
		}
		snap.Conversations = append(snap.Conversations, &c)
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("conversation rows: %w", err)
	}

	return snap, nil
}

func (r *SnapshotRepo) Clear(ctx context.Context) error {
	const q = `TRUNCATE session_metadata, session_conversations;`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("clear collections: %w", err)
	}
	return nil
}
