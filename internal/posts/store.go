// Package posts persists the generated LinkedIn posts. The collection is kept
// newest first and is separate from the agent memory document.
package posts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// ErrNotFound is returned by Get when no post has the requested ID.
var ErrNotFound = errors.New("post not found")

// Store defines the contract for the posts collection.
type Store interface {
	// List returns every post, newest first.
	List(ctx context.Context) ([]article.Post, error)

	// Get returns the post with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (article.Post, error)

	// Add prepends a batch of posts. The batch keeps its own order, so
	// posts[0] becomes the newest post of the collection.
	Add(ctx context.Context, posts ...article.Post) error

	// Close releases the resources held by the store.
	Close() error
}

// Supported backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultFileName is the JSON collection file inside the data directory.
const DefaultFileName = "posts.json"

// DefaultSQLiteName is the SQLite database file inside the data directory.
const DefaultSQLiteName = "posts.db"

// Open creates the store for the configured backend.
func Open(ctx context.Context, backend, dataDir, databaseURL string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(filepath.Join(dataDir, DefaultFileName)), nil
	case BackendSQLite:
		path := databaseURL
		if path == "" {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
			path = filepath.Join(dataDir, DefaultSQLiteName)
		}
		store, err := NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case BackendPostgres:
		store, err := NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown posts backend %q", backend)
	}
}
