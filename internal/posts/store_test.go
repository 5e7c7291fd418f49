package posts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeaico/ai-post-agent/internal/article"
)

func samplePost(id, source string, at time.Time) article.Post {
	return article.Post{
		ID: id,
		Article: article.Article{
			Title:       "Title " + id,
			URL:         "https://example.com/" + id,
			Description: "Description " + id,
			Source:      source,
			ScrapedAt:   at.Add(-time.Minute),
		},
		Text:        "Post text for " + id + " #AI",
		GeneratedAt: at,
	}
}

// runStoreContract exercises the behaviour shared by every backend.
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	t.Run("empty collection", func(t *testing.T) {
		posts, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("add prepends batches in order", func(t *testing.T) {
		first := []article.Post{
			samplePost("post_1_0", "OpenAI", at),
			samplePost("post_1_1", "Google AI", at),
		}
		second := []article.Post{
			samplePost("post_2_0", "Anthropic", at.Add(time.Hour)),
			samplePost("post_2_1", "OpenAI", at.Add(time.Hour)),
		}
		require.NoError(t, store.Add(ctx, first...))
		require.NoError(t, store.Add(ctx, second...))

		posts, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 4)

		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		assert.Equal(t, []string{"post_2_0", "post_2_1", "post_1_0", "post_1_1"}, ids)
		assert.Equal(t, second[0], posts[0])
	})

	t.Run("get existing post", func(t *testing.T) {
		p, err := store.Get(ctx, "post_1_1")
		require.NoError(t, err)
		assert.Equal(t, samplePost("post_1_1", "Google AI", at), p)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty add is a no-op", func(t *testing.T) {
		require.NoError(t, store.Add(ctx))
		posts, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 4)
	})
}

func TestJSONStore(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "data", DefaultFileName))
	defer store.Close()

	runStoreContract(t, store)
}

func TestJSONStore_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `[
  {
    "id": "post_20250310_093000_0",
    "article": {
      "title": "Gemini 2.0",
      "url": "https://blog.google/gemini",
      "description": "New model",
      "source": "Google AI",
      "scraped_at": "2025-03-10T09:29:00Z"
    },
    "post_text": "Gemini is here #AI",
    "generated_at": "2025-03-10T09:30:00Z"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := NewJSONStore(path).Get(context.Background(), "post_20250310_093000_0")
	require.NoError(t, err)
	assert.Equal(t, "Google AI", p.Article.Source)
	assert.Equal(t, "Gemini is here #AI", p.Text)
}

func TestJSONStore_ReadsLegacyTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `[
  {
    "id": "post_20250101_120000_0",
    "article": {
      "title": "Claude gets tools",
      "url": "https://anthropic.com/news/tools",
      "description": "Tool use",
      "source": "Anthropic News",
      "scraped_at": "2025-01-01T11:59:00.123456"
    },
    "post_text": "Agents everywhere #AI",
    "generated_at": "2025-01-01T12:00:00.654321"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	list, err := NewJSONStore(path).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	p := list[0]
	assert.Equal(t, "Anthropic News", p.Article.Source)
	assert.True(t, time.Date(2025, 1, 1, 12, 0, 0, 654321000, time.Local).Equal(p.GeneratedAt))
	assert.True(t, time.Date(2025, 1, 1, 11, 59, 0, 123456000, time.Local).Equal(p.Article.ScrapedAt))
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONStore(path).List(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), DefaultSQLiteName))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InitSchema(ctx))

	runStoreContract(t, store)
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InitSchema(ctx))

	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.Add(ctx, samplePost("a", "OpenAI", at)))

	err = store.Add(ctx, samplePost("b", "OpenAI", at), samplePost("a", "OpenAI", at))
	require.Error(t, err)

	posts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POSTAGENT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("POSTAGENT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InitSchema(ctx))
	_, err = store.pool.Exec(ctx, `TRUNCATE posts`)
	require.NoError(t, err)

	runStoreContract(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{"", &JSONStore{}, false},
		{BackendJSON, &JSONStore{}, false},
		{BackendSQLite, &SQLiteStore{}, false},
		{"mongo", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			store, err := Open(ctx, tt.backend, dir, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)
		})
	}
}
