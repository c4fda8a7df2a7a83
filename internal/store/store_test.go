package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "games.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"memory": NewMemoryStore(),
		"yaml":   NewFileStore(t.TempDir()),
		"sqlite": sqlite,
	}
}

func doc(id, user string, at time.Time, body string) Document {
	return Document{ID: id, UserID: user, UpdatedAt: at, Body: []byte(body)}
}

func TestStores(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			docs, err := s.List(ctx, Query{UserID: "alice", Limit: 1})
			if err != nil {
				t.Fatalf("Unexpected error on empty List: %v", err)
			}
			if len(docs) != 0 {
				t.Fatalf("Expected no documents, got %d", len(docs))
			}

			if err := s.Create(ctx, doc("game-1", "alice", base, "first: 1\n")); err != nil {
				t.Fatalf("Unexpected error on Create: %v", err)
			}
			if err := s.Create(ctx, doc("game-2", "alice", base.Add(time.Hour), "second: 2\n")); err != nil {
				t.Fatalf("Unexpected error on Create: %v", err)
			}
			if err := s.Create(ctx, doc("game-3", "bob", base.Add(2*time.Hour), "bob: 3\n")); err != nil {
				t.Fatalf("Unexpected error on Create: %v", err)
			}
			if err := s.Create(ctx, doc("game-1", "alice", base, "dup: 1\n")); !errors.Is(err, ErrAlreadyExists) {
				t.Errorf("Expected ErrAlreadyExists on duplicate Create, got %v", err)
			}

			docs, err = s.List(ctx, Query{UserID: "alice", Limit: 1})
			if err != nil {
				t.Fatalf("Unexpected error on List: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != "game-2" {
				t.Fatalf("Expected most recent game-2, got %+v", docs)
			}

			// Last write wins and moves game-1 to the front.
			if err := s.Update(ctx, "game-1", doc("game-1", "alice", base.Add(3*time.Hour), "first: updated\n")); err != nil {
				t.Fatalf("Unexpected error on Update: %v", err)
			}
			docs, err = s.List(ctx, Query{UserID: "alice"})
			if err != nil {
				t.Fatalf("Unexpected error on List: %v", err)
			}
			if len(docs) != 2 {
				t.Fatalf("Expected 2 documents for alice, got %d", len(docs))
			}
			if docs[0].ID != "game-1" || string(docs[0].Body) != "first: updated\n" {
				t.Errorf("Expected updated game-1 first, got %s %q", docs[0].ID, docs[0].Body)
			}
			if !docs[0].UpdatedAt.Equal(base.Add(3 * time.Hour)) {
				t.Errorf("Expected updatedAt %v, got %v", base.Add(3*time.Hour), docs[0].UpdatedAt)
			}

			if err := s.Update(ctx, "missing", doc("missing", "alice", base, "x: 1\n")); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound updating a missing document, got %v", err)
			}
		})
	}
}

func TestStoresRejectIncompleteDocuments(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Create(context.Background(), Document{ID: "x"}); err == nil {
				t.Error("Expected error for document without user id")
			}
		})
	}
}

func TestFileStoreSanitizesPaths(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	if err := s.Create(ctx, doc("../../escape", "../alice", time.Now(), "a: 1\n")); err != nil {
		t.Fatalf("Unexpected error on Create: %v", err)
	}
	want := filepath.Join(dir, "alice", "escape.yaml")
	if got := s.path("../alice", "../../escape"); got != want {
		t.Errorf("Expected path %s, got %s", want, got)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Expected *MemoryStore, got %T", s)
	}
	if _, err := Open("mongo", "", ""); err == nil {
		t.Error("Expected error for unknown store kind")
	}
}
