package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]Document{}}
}

func (s *MemoryStore) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[doc.ID]; ok {
		return fmt.Errorf("create %s: %w", doc.ID, ErrAlreadyExists)
	}
	s.m[doc.ID] = clone(doc)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc.ID = id
	if err := validate(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	s.m[id] = clone(doc)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, d := range s.m {
		if d.UserID == q.UserID {
			out = append(out, clone(d))
		}
	}
	return newestFirst(out, q.Limit), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func clone(d Document) Document {
	d.Body = slices.Clone(d.Body)
	return d
}
