package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// JSONStore keeps the collection as a single JSON array rewritten on every Add.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on the first Add.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) List(ctx context.Context) ([]article.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONStore) Get(ctx context.Context, id string) (article.Post, error) {
	posts, err := s.List(ctx)
	if err != nil {
		return article.Post{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return article.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *JSONStore) Add(ctx context.Context, posts ...article.Post) error {
	if len(posts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return err
	}

	all := make([]article.Post, 0, len(posts)+len(existing))
	all = append(all, posts...)
	all = append(all, existing...)
	return s.write(all)
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) read() ([]article.Post, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []article.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	posts := []article.Post{}
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts %s: %w", s.path, err)
	}
	return posts, nil
}

func (s *JSONStore) write(posts []article.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create posts dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".posts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write posts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace posts: %w", err)
	}
	return nil
}
