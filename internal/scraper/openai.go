package scraper

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/easeaico/ai-post-agent/internal/article"
)

const (
	feedItemLimit   = 5
	newsAnchorLimit = 10
	newsMaxArticles = 3
	minNewsTitle    = 10
)

// OpenAI reads the OpenAI RSS feed and falls back to the news page when the
// feed fails or has no usable items.
func (s *Scraper) OpenAI(ctx context.Context) []article.Article {
	articles, err := s.openAIFeed(ctx)
	if err != nil {
		s.logger.Warn("openai feed failed", "error", err)
	}
	if len(articles) > 0 {
		return articles
	}

	articles, err = s.openAINews(ctx)
	if err != nil {
		s.logger.Warn("openai news page failed", "error", err)
	}
	return articles
}

func (s *Scraper) openAIFeed(ctx context.Context) ([]article.Article, error) {
	body, err := s.get(ctx, s.endpoints.OpenAIFeed)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	now := s.now()
	var articles []article.Article
	for i, item := range feed.Items {
		if i >= feedItemLimit {
			break
		}
		title := cleanText(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		articles = append(articles, article.Article{
			Title:       title,
			URL:         link,
			Description: truncateRunes(stripHTML(item.Description), maxDescriptionRunes),
			Source:      SourceOpenAI,
			ScrapedAt:   now,
		})
	}
	return articles, nil
}

func (s *Scraper) openAINews(ctx context.Context) ([]article.Article, error) {
	body, err := s.get(ctx, s.endpoints.OpenAINews)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	now := s.now()
	var articles []article.Article
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if i >= newsAnchorLimit {
			return false
		}
		href, _ := a.Attr("href")
		if !strings.Contains(href, "/index/") && !strings.Contains(href, "/research/") {
			return true
		}
		title := cleanText(a.Text())
		if len([]rune(title)) <= minNewsTitle {
			return true
		}
		articles = append(articles, article.Article{
			Title:     title,
			URL:       resolveURL(s.endpoints.OpenAINews, href),
			Source:    SourceOpenAI,
			ScrapedAt: now,
		})
		return len(articles) < newsMaxArticles
	})
	return articles, nil
}

// stripHTML returns the text content of an HTML fragment.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanText(fragment)
	}
	return cleanText(doc.Text())
}
