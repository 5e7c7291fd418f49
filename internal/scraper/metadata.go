package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Metadata is the title and description advertised by a web page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FetchMetadata downloads a page and extracts its title and description.
// Open Graph tags win over <title> and the description meta tag; a page with
// neither description tag falls back to the start of its readable text.
func (s *Scraper) FetchMetadata(ctx context.Context, rawURL string) (Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Metadata{}, fmt.Errorf("invalid url %q", rawURL)
	}

	body, err := s.get(ctx, rawURL)
	if err != nil {
		return Metadata{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse page: %w", err)
	}

	var md Metadata
	md.Title = metaContent(doc, `meta[property="og:title"]`)
	if md.Title == "" {
		md.Title = cleanText(doc.Find("title").First().Text())
	}

	md.Description = metaContent(doc, `meta[property="og:description"]`)
	if md.Description == "" {
		md.Description = metaContent(doc, `meta[name="description"]`)
	}
	if md.Description == "" {
		if page, err := readability.FromReader(bytes.NewReader(body), u); err == nil {
			md.Description = truncateRunes(cleanText(page.TextContent), maxDescriptionRunes)
			if md.Title == "" {
				md.Title = cleanText(page.Title)
			}
		} else {
			s.logger.Debug("readability failed", "url", rawURL, "error", err)
		}
	}

	return md, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
