// Package store holds document stores for game states.
//
// Stores are keyed collections with whole-record replace and last-write-wins
// semantics. They treat the document body as opaque bytes and index only the
// owner and the update time.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is one stored game state.
type Document struct {
	ID        string
	UserID    string
	UpdatedAt time.Time
	Body      []byte
}

// Query selects a user's documents, most recently updated first.
// A Limit of zero or less returns every match.
type Query struct {
	UserID string
	Limit  int
}

// Backend is a store that owns resources.
type Backend interface {
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, id string, doc Document) error
	List(ctx context.Context, q Query) ([]Document, error)
	Close() error
}

// Open returns the backend named by kind: "yaml", "sqlite" or "memory".
func Open(kind, saveDir, sqlitePath string) (Backend, error) {
	switch kind {
	case "", "yaml":
		return NewFileStore(saveDir), nil
	case "sqlite":
		return OpenSQLite(sqlitePath)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

func validate(doc Document) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	if doc.UserID == "" {
		return errors.New("document user id is required")
	}
	return nil
}

func newestFirst(docs []Document, limit int) []Document {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}
