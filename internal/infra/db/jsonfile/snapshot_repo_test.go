//go:build !integration

package jsonfile_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain/model"
	"github.com/leorestored/leo-restored/internal/infra/db/jsonfile"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func testSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := model.NewConversation("sess-1")
	conv.Append(model.RoleUser, "hi leo", now)
	conv.Append(model.RoleAssistant, "meow", now.Add(time.Second))
	meta := model.NewSessionMetadata("sess-1", "hi leo", now)
	for _, m := range conv.Messages {
		meta.Record(m)
	}
	return &model.Snapshot{
		Metadata:      []*model.SessionMetadata{meta},
		Conversations: []*model.Conversation{conv},
		LastSaved:     now.Add(2 * time.Second),
	}
}

func TestSnapshotRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "conversations.json")
	repo := jsonfile.NewSnapshotRepo(path, newTestLogger())

	if err := repo.Save(ctx, testSnapshot(t)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Metadata) != 1 || len(got.Conversations) != 1 {
		t.Fatalf("expected 1 session, got %d/%d", len(got.Metadata), len(got.Conversations))
	}
	m := got.Metadata[0]
	if m.SessionID != "sess-1" || m.MessageCount != 2 || m.Duration != 1 {
		t.Errorf("metadata did not survive the round trip: %+v", m)
	}
	if got.Conversations[0].Messages[1].Content != "meow" {
		t.Error("conversation messages did not survive the round trip")
	}
	if got.LastSaved.IsZero() {
		t.Error("expected LastSaved to survive the round trip")
	}
}

func TestSnapshotRepo_LoadMissingFile(t *testing.T) {
	repo := jsonfile.NewSnapshotRepo(filepath.Join(t.TempDir(), "nope.json"), newTestLogger())
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected a missing file to load as empty, got %v", err)
	}
	if len(got.Metadata) != 0 {
		t.Errorf("expected empty snapshot, got %d sessions", len(got.Metadata))
	}
}

func TestSnapshotRepo_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo := jsonfile.NewSnapshotRepo(path, newTestLogger())
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected a malformed file to load as empty, got %v", err)
	}
	if len(got.Metadata) != 0 {
		t.Errorf("expected empty snapshot, got %d sessions", len(got.Metadata))
	}
}

func TestSnapshotRepo_Clear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.json")
	repo := jsonfile.NewSnapshotRepo(path, newTestLogger())

	if err := repo.Save(ctx, testSnapshot(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the snapshot file to be removed")
	}

	// Clearing again is a no-op.
	if err := repo.Clear(ctx); err != nil {
		t.Errorf("expected clearing a missing file to succeed, got %v", err)
	}
}
