package scraper

import (
	"time"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// FallbackArticles are sample articles used when the live sources return
// too little.
func FallbackArticles(now time.Time) []article.Article {
	return []article.Article{
		{
			Title:       "GPT-4 Turbo with Vision",
			URL:         "https://openai.com/index/gpt-4-turbo",
			Description: "GPT-4 Turbo with vision is now available in the API. This model can process images and return textual responses, unlocking new use cases.",
			Source:      SourceOpenAI,
			ScrapedAt:   now,
		},
		{
			Title:       "Gemini 2.0: Our new AI model for the agentic era",
			URL:         "https://blog.google/technology/google-deepmind/google-gemini-ai-update-december-2024/",
			Description: "Introducing Gemini 2.0, our most capable model yet, built for the agentic era. It delivers breakthrough performance and new capabilities.",
			Source:      SourceGoogle,
			ScrapedAt:   now,
		},
		{
			Title:       "Claude 3.5 Sonnet",
			URL:         "https://www.anthropic.com/news/claude-3-5-sonnet",
			Description: "Claude 3.5 Sonnet raises the industry bar for intelligence, outperforming competitor models and Claude 3 Opus on a wide range of evaluations.",
			Source:      SourceAnthropic,
			ScrapedAt:   now,
		},
	}
}

// topUp appends samples whose title is not already present until articles
// holds want entries.
func topUp(articles, samples []article.Article, want int) []article.Article {
	titles := make(map[string]bool, len(articles))
	for _, a := range articles {
		titles[a.Title] = true
	}
	for _, sample := range samples {
		if len(articles) >= want {
			break
		}
		if titles[sample.Title] {
			continue
		}
		articles = append(articles, sample)
		titles[sample.Title] = true
	}
	return articles
}
