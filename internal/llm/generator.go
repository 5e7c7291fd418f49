// Package llm generates LinkedIn post drafts with a Gemini model.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/learning"
	"github.com/easeaico/ai-post-agent/internal/logging"
)

// DefaultModel is the Gemini model used for post generation.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Generator turns articles into LinkedIn posts.
type Generator struct {
	llm        model.LLM
	modelName  string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(g *Generator) { g.maxRetries = n }
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(g *Generator) { g.baseDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithClock sets the time source used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator wraps an ADK model.
func NewGenerator(llm model.LLM, opts ...Option) *Generator {
	g := &Generator{
		llm:        llm,
		modelName:  llm.Name(),
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrDiscard(g.logger).With("component", "generator")
	return g
}

// NewGeminiGenerator creates a Generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, opts ...Option) (*Generator, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	llm, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM model: %w", err)
	}
	return NewGenerator(llm, opts...), nil
}

var postPromptTmpl = template.Must(template.New("postPrompt").Parse(
	`You are an expert at writing engaging LinkedIn content about Artificial Intelligence.

Based on the following article, write an engaging LinkedIn post:

Title: {{.Article.Title}}
Source: {{.Article.Source}}
Description: {{.Article.Description}}
URL: {{.Article.URL}}

Post requirements:
- The tone must be {{.Params.Tone}}
- Write {{.Params.ParagraphCount}} short paragraphs
- Highlight the value or impact of the news
- Be enthusiastic but well informed
- End with a question that invites engagement
- Do not overuse hashtags (at most {{.Params.HashtagCount}} relevant ones)
- Include emojis, {{.Params.EmojiLevel}}, only where appropriate
- Do not include the link in the text, it is added afterwards

Return ONLY the post text, without any introduction or extra comments.`))

// BuildPrompt renders the generation prompt for an article.
func BuildPrompt(a article.Article, p learning.Params) (string, error) {
	data := struct {
		Article article.Article
		Params  learning.Params
	}{a, p}

	var buf bytes.Buffer
	if err := postPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// GeneratePost writes one post for the article. The returned post has no ID;
// IDs are assigned when the post is stored.
func (g *Generator) GeneratePost(ctx context.Context, a article.Article, p learning.Params) (article.Post, error) {
	prompt, err := BuildPrompt(a, p)
	if err != nil {
		return article.Post{}, err
	}

	text, err := g.generateWithRetry(ctx, prompt)
	if err != nil {
		return article.Post{}, fmt.Errorf("failed to generate post for %q: %w", a.Title, err)
	}

	return article.Post{
		Article:     a,
		Text:        fmt.Sprintf("%s\n\nRead more: %s", text, a.URL),
		GeneratedAt: g.now(),
	}, nil
}

// GeneratePosts writes a post for every article, skipping articles whose
// generation fails. It returns an error only when ctx is done.
func (g *Generator) GeneratePosts(ctx context.Context, articles []article.Article, p learning.Params) ([]article.Post, error) {
	posts := make([]article.Post, 0, len(articles))
	for i, a := range articles {
		g.logger.Info("generating post", "index", i+1, "total", len(articles), "title", a.Title)

		post, err := g.GeneratePost(ctx, a, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return posts, ctxErr
			}
			g.logger.Error("post generation failed", "title", a.Title, "error", err)
			continue
		}
		posts = append(posts, post)
	}

	g.logger.Info("posts generated", "count", len(posts), "requested", len(articles))
	return posts, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	req := &model.LLMRequest{
		Model:    g.modelName,
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config:   &genai.GenerateContentConfig{},
	}

	var sb strings.Builder
	for resp, err := range g.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil {
			continue
		}
		if resp.ErrorCode != "" {
			return "", fmt.Errorf("model error %s: %s", resp.ErrorCode, resp.ErrorMessage)
		}
		if resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
