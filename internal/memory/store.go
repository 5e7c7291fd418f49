package memory

import "github.com/easeaico/ai-post-agent/internal/article"

// Store defines the contract for the agent memory.
// Implementations persist the whole document on every change.
type Store interface {
	// Load re-reads the persisted document. A missing document yields the
	// default memory, not an error.
	Load() (*Document, error)

	// Save persists the current document, replacing the previous copy.
	Save() error

	// RecordGeneration registers a completed generation cycle and persists it.
	RecordGeneration(articles []article.Article, posts []article.Post) error

	// WasProcessed reports whether the URL is present in the article history.
	WasProcessed(url string) bool

	// TopicDiversity returns the evenness of topic coverage in [0,1].
	TopicDiversity() float64

	// Snapshot returns a copy of the current document that callers may read freely.
	Snapshot() *Document
}
