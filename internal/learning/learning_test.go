package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/memory"
)

func postsFrom(sources ...string) []article.Post {
	posts := make([]article.Post, len(sources))
	for i, s := range sources {
		posts[i] = article.Post{ID: s, Article: article.Article{Source: s}}
	}
	return posts
}

func codes(r Report) []RecommendationCode {
	out := []RecommendationCode{}
	for _, rec := range r.Recommendations {
		out = append(out, rec.Code)
	}
	return out
}

func TestAnalyzePerformance(t *testing.T) {
	varied := map[string]int{"ai": 2, "llm": 2, "gpt": 2, "gemini": 2, "agent": 2}

	tests := []struct {
		name   string
		topics map[string]int
		posts  []article.Post
		want   []RecommendationCode
	}{
		{
			name:   "empty memory and no posts",
			topics: nil,
			posts:  nil,
			want:   []RecommendationCode{RecLowTopicVariety},
		},
		{
			name:   "balanced and varied",
			topics: varied,
			posts:  postsFrom("OpenAI", "Google AI", "OpenAI"),
			want:   []RecommendationCode{},
		},
		{
			name:   "source imbalance",
			topics: varied,
			posts:  postsFrom("OpenAI", "OpenAI", "OpenAI", "OpenAI", "Google AI"),
			want:   []RecommendationCode{RecSourceImbalance},
		},
		{
			name:   "exactly three times is not an imbalance",
			topics: varied,
			posts:  postsFrom("OpenAI", "OpenAI", "OpenAI", "Google AI"),
			want:   []RecommendationCode{},
		},
		{
			name:   "every rule applies",
			topics: map[string]int{"ai": 10, "llm": 1},
			posts:  postsFrom("A", "A", "A", "A", "B"),
			want:   []RecommendationCode{RecSourceImbalance, RecLowTopicVariety, RecLowDiversity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memory.NewDocument()
			if tt.topics != nil {
				doc.TopicsCovered = tt.topics
			}

			r := AnalyzePerformance(doc, tt.posts)
			assert.Equal(t, len(tt.posts), r.TotalPostsGenerated)
			assert.Equal(t, tt.want, codes(r))
			assert.Equal(t, doc.TopicsCovered, r.TopicCoverage)
		})
	}
}

func TestAnalyzePerformance_CopiesTopics(t *testing.T) {
	doc := memory.NewDocument()
	doc.TopicsCovered["ai"] = 1

	r := AnalyzePerformance(doc, postsFrom("OpenAI", "OpenAI"))
	r.TopicCoverage["ai"] = 99

	assert.Equal(t, 1, doc.TopicsCovered["ai"])
	assert.Equal(t, map[string]int{"OpenAI": 2}, r.SourcesBalance)
}

func TestTopTopics_TieBreakByName(t *testing.T) {
	top := TopTopics(map[string]int{"gpt": 2, "ai": 5, "llm": 2, "agent": 2}, 3)
	assert.Equal(t, []TopicCount{{"ai", 5}, {"agent", 2}, {"gpt", 2}}, top)
}

func TestDefaultParams(t *testing.T) {
	assert.Equal(t, Params{
		Tone:           "professional-but-accessible",
		EmojiLevel:     "subtle(1-2)",
		HashtagCount:   "3-4",
		ParagraphCount: "2-3",
	}, DefaultParams())
}

func TestAdaptiveParams(t *testing.T) {
	tests := []struct {
		name        string
		topics      map[string]int
		generations int
		tone        string
		paragraphs  string
	}{
		{"fresh memory", nil, 0, DefaultTone, ShortParagraphCount},
		{"one generation", nil, 1, DefaultTone, LongParagraphCount},
		{"two generations keep default", nil, 2, DefaultTone, DefaultParagraphCount},
		{"rotation wraps", nil, 3, DefaultTone, ShortParagraphCount},
		{"technical focus", map[string]int{"llm": 8, "transformer": 5, "ai": 2}, 2, TechnicalTone, DefaultParagraphCount},
		{"technical share at 60 percent is not enough", map[string]int{"llm": 6, "ai": 4}, 2, DefaultTone, DefaultParagraphCount},
		{"general focus", map[string]int{"ai": 8, "gpt": 5, "llm": 2}, 4, DefaultTone, LongParagraphCount},
		{"only lower ranked topics are technical", map[string]int{"ai": 9, "gpt": 9, "gemini": 9, "llm": 8}, 2, DefaultTone, DefaultParagraphCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memory.NewDocument()
			if tt.topics != nil {
				doc.TopicsCovered = tt.topics
			}
			doc.TotalGenerations = tt.generations

			p := AdaptiveParams(doc)
			assert.Equal(t, tt.tone, p.Tone)
			assert.Equal(t, tt.paragraphs, p.ParagraphCount)
			assert.Equal(t, DefaultEmojiLevel, p.EmojiLevel)
			assert.Equal(t, DefaultHashtagCount, p.HashtagCount)
		})
	}
}
