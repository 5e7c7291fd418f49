package memory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeaico/ai-post-agent/internal/article"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewFileStore_MissingFileIsDefault(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)

	doc := store.Snapshot()
	assert.Equal(t, NewDocument(), doc)
	assert.Nil(t, doc.LastGeneration)
	assert.Equal(t, 1.0, store.TopicDiversity())
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	store, err := NewFileStore(dir, WithClock(fixedClock(at)))
	require.NoError(t, err)

	err = store.RecordGeneration(
		[]article.Article{{URL: "u1", Title: "T1", Source: "OpenAI Blog"}},
		[]article.Post{{Text: "Agents everywhere #GPT"}},
	)
	require.NoError(t, err)

	before := store.Snapshot()
	require.NoError(t, store.Save())

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	after := reopened.Snapshot()

	require.NotNil(t, after.LastGeneration)
	assert.True(t, before.LastGeneration.Equal(after.LastGeneration.Time))
	after.LastGeneration = before.LastGeneration
	require.Len(t, after.ArticleHistory, 1)
	assert.True(t, before.ArticleHistory[0].ProcessedAt.Equal(after.ArticleHistory[0].ProcessedAt.Time))
	after.ArticleHistory[0].ProcessedAt = before.ArticleHistory[0].ProcessedAt
	assert.Equal(t, before, after)
}

func TestFileStore_RecordGeneration(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	store, err := NewFileStore(dir, WithClock(fixedClock(at)))
	require.NoError(t, err)

	articles := []article.Article{
		{URL: "u1", Title: "T1", Source: "OpenAI Blog"},
		{URL: "u2", Title: "T2", Source: "Google AI Blog"},
		{URL: "u1", Title: "T1", Source: "OpenAI Blog"},
	}
	posts := []article.Post{
		{Text: "The new LLM agent #Gemini"},
		{Text: "Hello #gemini"},
	}
	require.NoError(t, store.RecordGeneration(articles, posts))

	doc := store.Snapshot()
	assert.Equal(t, 1, doc.TotalGenerations)
	require.NotNil(t, doc.LastGeneration)
	assert.True(t, at.Equal(doc.LastGeneration.Time))
	assert.Len(t, doc.ArticleHistory, 3, "history is append-only, duplicates included")
	assert.Equal(t, map[string]int{"OpenAI Blog": 2, "Google AI Blog": 1}, doc.SourcesUsed)
	assert.Equal(t, 2, doc.TopicsCovered["gemini"])
	assert.Equal(t, 1, doc.TopicsCovered["llm"])
	assert.Equal(t, 1, doc.TopicsCovered["agent"])

	assert.True(t, store.WasProcessed("u1"))
	assert.False(t, store.WasProcessed("u3"))

	_, err = os.Stat(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err, "document is persisted")
}

func TestFileStore_RecordGenerationNeverDecreases(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	prev := store.Snapshot()
	for i := 0; i < 5; i++ {
		err := store.RecordGeneration(
			[]article.Article{{URL: "u", Source: "S"}},
			[]article.Post{{Text: "#ai"}},
		)
		require.NoError(t, err)

		cur := store.Snapshot()
		assert.Equal(t, prev.TotalGenerations+1, cur.TotalGenerations)
		for k, v := range prev.TopicsCovered {
			assert.GreaterOrEqual(t, cur.TopicsCovered[k], v)
		}
		for k, v := range prev.SourcesUsed {
			assert.GreaterOrEqual(t, cur.SourcesUsed[k], v)
		}
		prev = cur
	}
}

func TestFileStore_WriteFailureIsSurfaced(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")

	store, err := NewFileStore(dataDir)
	require.NoError(t, err)

	// A regular file where the data directory should be makes it unwritable.
	require.NoError(t, os.WriteFile(dataDir, []byte("x"), 0644))

	err = store.RecordGeneration([]article.Article{{URL: "u", Source: "S"}}, nil)
	require.Error(t, err)

	doc := store.Snapshot()
	assert.Equal(t, 0, doc.TotalGenerations, "failed write leaves memory untouched")
	assert.False(t, store.WasProcessed("u"))
}

func TestFileStore_ReadsLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "topics_covered": {"ai": 3, "gpt": 1},
  "sources_used": {"OpenAI Blog": 2},
  "successful_patterns": [],
  "last_generation": "2024-11-20T18:42:10.123456",
  "total_generations": 2,
  "article_history": [
    {"url": "https://openai.com/index/x", "title": "X", "source": "OpenAI Blog", "processed_at": "2024-11-20T18:42:10.123456"}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(legacy), 0644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	doc := store.Snapshot()
	assert.Equal(t, 2, doc.TotalGenerations)
	require.NotNil(t, doc.LastGeneration)
	assert.Equal(t, 2024, doc.LastGeneration.Year())
	assert.True(t, store.WasProcessed("https://openai.com/index/x"))
}

func TestFileStore_RejectsInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative counter", `{"topics_covered": {"ai": -1}}`},
		{"wrong type", `{"total_generations": "two"}`},
		{"history without url", `{"article_history": [{"title": "x"}]}`},
		{"not an object", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(tt.body), 0644))

			_, err := NewFileStore(dir)
			require.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestFileStore_PartialDocumentIsNormalized(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(`{"total_generations": 4}`), 0644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	doc := store.Snapshot()
	assert.Equal(t, 4, doc.TotalGenerations)
	assert.NotNil(t, doc.TopicsCovered)
	assert.NotNil(t, doc.ArticleHistory)
}
