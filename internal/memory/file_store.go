package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// DefaultFileName is the name of the memory document inside the data directory.
const DefaultFileName = "agent_memory.json"

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// FileStore keeps the memory document in a JSON file and mirrors it in
// memory. Writes go to a temporary file that is renamed over the target, so
// readers never observe a partial document.
type FileStore struct {
	mu   sync.RWMutex
	path string
	doc  *Document
	now  func() time.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock overrides the time source used for generation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) { s.now = now }
}

// NewFileStore opens the memory document stored in dataDir, falling back to
// the default document when the file does not exist yet.
func NewFileStore(dataDir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		path: filepath.Join(dataDir, DefaultFileName),
		doc:  NewDocument(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the memory document.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document from disk and makes it the current state.
func (s *FileStore) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := readDocument(s.path)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return doc.Clone(), nil
}

func readDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read memory: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse memory %s: %w", path, err)
	}
	doc.normalize()
	return doc, nil
}

// Save writes the current document to disk.
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write(s.doc)
}

func (s *FileStore) write(doc *Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode memory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".agent_memory-*.json")
	if err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save memory: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save memory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	return nil
}

// RecordGeneration bumps the generation counter, appends every article to
// the history, counts sources and the topics mined from the posts, then
// persists the document. If persisting fails the in-memory state is left as
// it was before the call and the error is returned.
func (s *FileStore) RecordGeneration(articles []article.Article, posts []article.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := NewTimestamp(s.now())
	next := s.doc.Clone()

	next.TotalGenerations++
	next.LastGeneration = &now

	for _, a := range articles {
		next.ArticleHistory = append(next.ArticleHistory, ArticleRecord{
			URL:         a.URL,
			Title:       a.Title,
			Source:      a.Source,
			ProcessedAt: now,
		})
		next.SourcesUsed[a.Source]++
	}

	for _, p := range posts {
		for _, topic := range ExtractTopics(p.Text) {
			next.TopicsCovered[topic]++
		}
	}

	if err := s.write(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// WasProcessed reports whether the URL is in the article history.
func (s *FileStore) WasProcessed(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.WasProcessed(url)
}

// TopicDiversity returns the evenness of topic coverage.
func (s *FileStore) TopicDiversity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.TopicDiversity()
}

// Snapshot returns a deep copy of the current document.
func (s *FileStore) Snapshot() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}
