// Package memory provides the persistent memory of the post agent: cumulative
// topic and source counters, the processed-article history and the time of
// the last generation, stored as a single JSON document.
package memory

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// Document is the persisted memory aggregate. Field names match the on-disk
// agent_memory.json layout.
type Document struct {
	TopicsCovered      map[string]int    `json:"topics_covered"`
	SourcesUsed        map[string]int    `json:"sources_used"`
	SuccessfulPatterns []json.RawMessage `json:"successful_patterns"`
	LastGeneration     *Timestamp        `json:"last_generation"`
	TotalGenerations   int               `json:"total_generations"`
	ArticleHistory     []ArticleRecord   `json:"article_history"`
}

// ArticleRecord is one entry of the processed-article history.
type ArticleRecord struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	ProcessedAt Timestamp `json:"processed_at"`
}

// NewDocument returns the default memory used when nothing has been persisted yet.
func NewDocument() *Document {
	return &Document{
		TopicsCovered:      map[string]int{},
		SourcesUsed:        map[string]int{},
		SuccessfulPatterns: []json.RawMessage{},
		ArticleHistory:     []ArticleRecord{},
	}
}

// normalize replaces nil collections so the document always serializes as a
// total object.
func (d *Document) normalize() {
	if d.TopicsCovered == nil {
		d.TopicsCovered = map[string]int{}
	}
	if d.SourcesUsed == nil {
		d.SourcesUsed = map[string]int{}
	}
	if d.SuccessfulPatterns == nil {
		d.SuccessfulPatterns = []json.RawMessage{}
	}
	if d.ArticleHistory == nil {
		d.ArticleHistory = []ArticleRecord{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		TopicsCovered:      maps.Clone(d.TopicsCovered),
		SourcesUsed:        maps.Clone(d.SourcesUsed),
		SuccessfulPatterns: make([]json.RawMessage, len(d.SuccessfulPatterns)),
		TotalGenerations:   d.TotalGenerations,
		ArticleHistory:     slices.Clone(d.ArticleHistory),
	}
	for i, p := range d.SuccessfulPatterns {
		c.SuccessfulPatterns[i] = slices.Clone(p)
	}
	if d.LastGeneration != nil {
		ts := *d.LastGeneration
		c.LastGeneration = &ts
	}
	c.normalize()
	return c
}

// WasProcessed reports whether an article with exactly this URL appears in
// the history.
func (d *Document) WasProcessed(url string) bool {
	for _, rec := range d.ArticleHistory {
		if rec.URL == url {
			return true
		}
	}
	return false
}

// TopicDiversity measures how evenly topics have been covered, in [0,1].
// An empty or perfectly even distribution scores 1.
func (d *Document) TopicDiversity() float64 {
	if len(d.TopicsCovered) == 0 {
		return 1.0
	}

	first := true
	var maxCount, minCount int
	for _, c := range d.TopicsCovered {
		if first {
			maxCount, minCount = c, c
			first = false
			continue
		}
		maxCount = max(maxCount, c)
		minCount = min(minCount, c)
	}

	if maxCount == minCount || maxCount <= 0 {
		return 1.0
	}
	return 1.0 - float64(maxCount-minCount)/float64(maxCount)
}

// TotalSourceUses is the sum of all source counters.
func (d *Document) TotalSourceUses() int {
	total := 0
	for _, c := range d.SourcesUsed {
		total += c
	}
	return total
}

// Timestamp is the instant type of the memory document.
type Timestamp = article.Timestamp

// NewTimestamp wraps t, dropping the monotonic clock reading.
func NewTimestamp(t time.Time) Timestamp {
	return article.NewTimestamp(t)
}

// ParseTimestamp parses the formats accepted in the memory document.
func ParseTimestamp(s string) (Timestamp, error) {
	return article.ParseTimestamp(s)
}
