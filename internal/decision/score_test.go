package decision

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/memory"
)

func reasonCodes(s Score) []ReasonCode {
	codes := make([]ReasonCode, len(s.Reasons))
	for i, r := range s.Reasons {
		codes[i] = r.Code
	}
	return codes
}

func TestScoreArticle(t *testing.T) {
	full := article.Article{
		URL:         "u1",
		Source:      "S",
		Title:       "A title longer than thirty characters indeed",
		Description: strings.Repeat("x", 150),
	}

	processed := memory.NewDocument()
	processed.SourcesUsed = map[string]int{"S": 10}
	processed.ArticleHistory = []memory.ArticleRecord{{URL: "u1", Source: "S"}}

	balanced := memory.NewDocument()
	balanced.SourcesUsed = map[string]int{"S": 4, "T": 6}

	rare := memory.NewDocument()
	rare.SourcesUsed = map[string]int{"S": 1, "T": 9}

	tests := []struct {
		name    string
		article article.Article
		doc     *memory.Document
		want    float64
		codes   []ReasonCode
	}{
		{
			name:    "best case on empty memory",
			article: full,
			doc:     memory.NewDocument(),
			want:    100,
			codes:   []ReasonCode{ReasonNewArticle, ReasonFirstSource, ReasonLongDescription, ReasonLongTitle},
		},
		{
			name:    "processed article from the only source",
			article: full,
			doc:     processed,
			want:    40,
			codes:   []ReasonCode{ReasonSeenArticle, ReasonFrequentSource, ReasonLongDescription, ReasonLongTitle},
		},
		{
			name:    "moderately used source",
			article: full,
			doc:     balanced,
			want:    85,
			codes:   []ReasonCode{ReasonNewArticle, ReasonModerateSource, ReasonLongDescription, ReasonLongTitle},
		},
		{
			name:    "rare source",
			article: full,
			doc:     rare,
			want:    100,
			codes:   []ReasonCode{ReasonNewArticle, ReasonRareSource, ReasonLongDescription, ReasonLongTitle},
		},
		{
			name:    "short description and title",
			article: article.Article{URL: "u2", Source: "S", Title: "Short", Description: "brief"},
			doc:     memory.NewDocument(),
			want:    78,
			codes:   []ReasonCode{ReasonNewArticle, ReasonFirstSource, ReasonShortDesc},
		},
		{
			name:    "missing description",
			article: article.Article{URL: "u1", Source: "S"},
			doc:     processed,
			want:    10,
			codes:   []ReasonCode{ReasonSeenArticle, ReasonFrequentSource},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ScoreArticle(tt.article, tt.doc)
			assert.Equal(t, tt.want, s.Value)
			assert.Equal(t, tt.codes, reasonCodes(s))
		})
	}
}

func TestScoreWeights(t *testing.T) {
	assert.Equal(t, 100, MaxScore)
	assert.Equal(t, MaxScore, novelWeight+rareSourceWeight+longDescWeight+longTitleWeight)
	assert.Less(t, seenWeight, novelWeight)
	assert.Less(t, frequentSourceWeight, moderateSourceWeight)
	assert.Less(t, moderateSourceWeight, rareSourceWeight)
	assert.Less(t, shortDescWeight, longDescWeight)
}

func TestScoreArticle_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sources := []string{"OpenAI", "Google AI", "Anthropic", "Custom Source"}

	for i := range 500 {
		doc := memory.NewDocument()
		for _, s := range sources {
			doc.SourcesUsed[s] = rng.IntN(20)
		}
		if rng.IntN(2) == 0 {
			doc.ArticleHistory = append(doc.ArticleHistory, memory.ArticleRecord{URL: fmt.Sprintf("u%d", i)})
		}

		a := article.Article{
			URL:         fmt.Sprintf("u%d", i),
			Source:      sources[rng.IntN(len(sources))],
			Title:       strings.Repeat("t", rng.IntN(60)),
			Description: strings.Repeat("d", rng.IntN(200)),
		}

		s := ScoreArticle(a, doc)
		require.GreaterOrEqual(t, s.Value, 0.0)
		require.LessOrEqual(t, s.Value, float64(MaxScore))
	}
}

func TestSelectBestArticles(t *testing.T) {
	doc := memory.NewDocument()
	doc.ArticleHistory = []memory.ArticleRecord{{URL: "seen"}}

	long := strings.Repeat("x", 120)
	articles := []article.Article{
		{URL: "seen", Source: "S", Title: "first", Description: long},
		{URL: "a", Source: "S", Title: "tie one"},
		{URL: "b", Source: "S", Title: "A title longer than thirty characters indeed", Description: long},
		{URL: "c", Source: "S", Title: "tie two"},
		{URL: "d", Source: "S", Title: "tie three"},
	}

	t.Run("default count keeps best three with stable ties", func(t *testing.T) {
		got := SelectBestArticles(articles, doc, 0)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].URL, got[1].URL, got[2].URL})
	})

	t.Run("fewer articles than max returns all sorted", func(t *testing.T) {
		got := SelectBestArticles(articles[:2], doc, 5)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].URL)
		assert.Equal(t, "seen", got[1].URL)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SelectBestArticles(nil, doc, 3))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		before := append([]article.Article(nil), articles...)
		SelectBestArticles(articles, doc, 3)
		assert.Equal(t, before, articles)
	})
}

func TestRankArticles_SortedDescending(t *testing.T) {
	doc := memory.NewDocument()
	doc.SourcesUsed = map[string]int{"A": 8, "B": 2}

	var articles []article.Article
	for i := range 12 {
		articles = append(articles, article.Article{
			URL:         fmt.Sprintf("u%d", i),
			Source:      []string{"A", "B", "C"}[i%3],
			Title:       strings.Repeat("t", i*4),
			Description: strings.Repeat("d", i*15),
			ScrapedAt:   time.Unix(int64(i), 0),
		})
	}

	ranked := RankArticles(articles, doc)
	require.Len(t, ranked, len(articles))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score.Value, ranked[i].Score.Value)
	}
}
