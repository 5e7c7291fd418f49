package scraper

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/easeaico/ai-post-agent/internal/article"
)

const googleArticleLimit = 5

// Google reads the first article cards of the Google AI blog.
func (s *Scraper) Google(ctx context.Context) []article.Article {
	articles, err := s.google(ctx)
	if err != nil {
		s.logger.Warn("google blog failed", "error", err)
	}
	return articles
}

func (s *Scraper) google(ctx context.Context) ([]article.Article, error) {
	body, err := s.get(ctx, s.endpoints.GoogleBlog)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	now := s.now()
	var articles []article.Article
	doc.Find("article").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= googleArticleLimit {
			return false
		}
		title := cleanText(card.Find("h2, h3").First().Text())
		href, ok := card.Find("a[href]").First().Attr("href")
		if title == "" || !ok || href == "" {
			return true
		}
		articles = append(articles, article.Article{
			Title:       title,
			URL:         resolveURL(s.endpoints.GoogleBlog, href),
			Description: truncateRunes(cleanText(card.Find("p").First().Text()), maxDescriptionRunes),
			Source:      SourceGoogle,
			ScrapedAt:   now,
		})
		return true
	})
	return articles, nil
}
