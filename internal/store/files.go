package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSaveDir is where the file store keeps its documents.
const DefaultSaveDir = ".saves"

var cleanKeyRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// FileStore keeps one YAML file per document under dir/<user>/<id>.yaml.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

type fileEnvelope struct {
	ID        string    `yaml:"id"`
	UserID    string    `yaml:"userId"`
	UpdatedAt time.Time `yaml:"updatedAt"`
	Body      string    `yaml:"body"`
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultSaveDir
	}
	return &FileStore{dir: dir}
}

func cleanKey(key string) string {
	key = cleanKeyRe.ReplaceAllString(key, "")
	return strings.TrimLeft(key, ".")
}

func (s *FileStore) userDir(userID string) string {
	return filepath.Join(s.dir, cleanKey(userID))
}

func (s *FileStore) path(userID, id string) string {
	return filepath.Join(s.userDir(userID), cleanKey(id)+".yaml")
}

func (s *FileStore) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(doc.UserID, doc.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("create %s: %w", doc.ID, ErrAlreadyExists)
	}
	return s.write(path, doc)
}

func (s *FileStore) Update(ctx context.Context, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc.ID = id
	if err := validate(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(doc.UserID, id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return s.write(path, doc)
}

func (s *FileStore) List(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.userDir(q.UserID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var env fileEnvelope
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		docs = append(docs, Document{
			ID:        env.ID,
			UserID:    env.UserID,
			UpdatedAt: env.UpdatedAt,
			Body:      []byte(env.Body),
		})
	}
	return newestFirst(docs, q.Limit), nil
}

func (s *FileStore) Close() error {
	return nil
}

// write replaces the file atomically so a crash never leaves half a save.
func (s *FileStore) write(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(fileEnvelope{
		ID:        doc.ID,
		UserID:    doc.UserID,
		UpdatedAt: doc.UpdatedAt.UTC(),
		Body:      string(doc.Body),
	})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
