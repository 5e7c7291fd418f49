// Package article defines the records exchanged between the scraper, the
// decision engine, the generator and the posts collection.
package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article is a candidate news article produced by the scraper or supplied
// by a user as a custom source.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// UnmarshalJSON accepts naive ISO-8601 scrape times as well as RFC 3339.
func (a *Article) UnmarshalJSON(data []byte) error {
	type plain Article
	aux := struct {
		*plain
		ScrapedAt Timestamp `json:"scraped_at"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ScrapedAt = aux.ScrapedAt.Time
	return nil
}

// Validate checks the fields the decision engine and memory rely on.
// Title and description may be empty; they only lower the score.
func (a Article) Validate() error {
	var errs []error
	if strings.TrimSpace(a.URL) == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if strings.TrimSpace(a.Source) == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid article %q: %w", a.Title, errors.Join(errs...))
	}
	return nil
}

// Post is a generated LinkedIn draft together with the article it is based on.
type Post struct {
	ID          string    `json:"id"`
	Article     Article   `json:"article"`
	Text        string    `json:"post_text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// UnmarshalJSON accepts naive ISO-8601 generation times as well as RFC 3339.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	aux := struct {
		*plain
		GeneratedAt Timestamp `json:"generated_at"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.GeneratedAt = aux.GeneratedAt.Time
	return nil
}

// NewPostID returns the identifier used for the i-th post of a generation cycle.
func NewPostID(at time.Time, i int) string {
	return fmt.Sprintf("post_%s_%d", at.Format("20060102_150405"), i)
}

// NewCustomPostID returns the identifier used for a post generated from a
// custom source. The random suffix keeps IDs unique within the same second.
func NewCustomPostID(at time.Time) string {
	return fmt.Sprintf("post_%s_custom_%s", at.Format("20060102_150405"), uuid.NewString()[:8])
}

// SourceCounts counts posts per article source.
func SourceCounts(posts []Post) map[string]int {
	counts := make(map[string]int)
	for _, p := range posts {
		counts[p.Article.Source]++
	}
	return counts
}
