// Package service composes the agent brain with the scraper, the generator
// and the posts collection into complete generation cycles.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/decision"
	"github.com/easeaico/ai-post-agent/internal/learning"
	"github.com/easeaico/ai-post-agent/internal/logging"
	"github.com/easeaico/ai-post-agent/internal/memory"
)

// PostLister reads the persisted posts collection.
type PostLister interface {
	List(ctx context.Context) ([]article.Post, error)
}

// Agent is the autonomous brain: it decides when to run, picks articles,
// learns from finished generations and tunes the generation parameters.
type Agent struct {
	memory      memory.Store
	posts       PostLister
	maxArticles int
	now         func() time.Time
	logger      *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithMaxArticles sets how many articles ProcessArticles keeps.
func WithMaxArticles(n int) AgentOption {
	return func(a *Agent) { a.maxArticles = n }
}

// WithAgentClock sets the time source used by the decision rules.
func WithAgentClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

// WithAgentLogger sets the logger.
func WithAgentLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = l }
}

// NewAgent creates an agent over the memory store and the posts collection.
func NewAgent(mem memory.Store, posts PostLister, opts ...AgentOption) *Agent {
	a := &Agent{
		memory:      mem,
		posts:       posts,
		maxArticles: decision.DefaultMaxArticles,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrDiscard(a.logger).With("component", "agent")
	return a
}

// Evaluation is the result of EvaluateAndDecide.
type Evaluation struct {
	Decision    decision.Decision `json:"decision"`
	Performance learning.Report   `json:"performance"`
}

// EvaluateAndDecide decides whether a cycle should run now and reports on
// past performance.
func (a *Agent) EvaluateAndDecide(ctx context.Context) (Evaluation, error) {
	doc := a.memory.Snapshot()

	posts, err := a.posts.List(ctx)
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to load posts: %w", err)
	}

	return Evaluation{
		Decision:    decision.ShouldGenerateNow(doc, a.now()),
		Performance: learning.AnalyzePerformance(doc, posts),
	}, nil
}

// ProcessArticles validates the candidates and returns the best ones.
// Invalid candidates are logged and dropped.
func (a *Agent) ProcessArticles(candidates []article.Article) []article.Article {
	valid := make([]article.Article, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			a.logger.Warn("dropping candidate", "error", err)
			continue
		}
		valid = append(valid, c)
	}

	selected := decision.SelectBestArticles(valid, a.memory.Snapshot(), a.maxArticles)
	a.logger.Info("articles selected", "candidates", len(candidates), "selected", len(selected))
	return selected
}

// LearnFromGeneration records a finished generation in memory.
func (a *Agent) LearnFromGeneration(articles []article.Article, posts []article.Post) error {
	if err := a.memory.RecordGeneration(articles, posts); err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// GetAdaptiveParams returns the generation parameters for the next posts.
func (a *Agent) GetAdaptiveParams() learning.Params {
	return learning.AdaptiveParams(a.memory.Snapshot())
}

// Memory returns a copy of the memory document.
func (a *Agent) Memory() *memory.Document {
	return a.memory.Snapshot()
}

// MemorySummary condenses the memory document for status output.
type MemorySummary struct {
	TotalGenerations  int               `json:"total_generations"`
	ArticlesProcessed int               `json:"articles_processed"`
	TopicsCovered     int               `json:"topics_covered"`
	TopicDiversity    float64           `json:"topic_diversity"`
	LastGeneration    *memory.Timestamp `json:"last_generation"`
	SourcesUsed       map[string]int    `json:"sources_used"`
}

// StatusReport is the full picture of the agent's state.
type StatusReport struct {
	Memory         MemorySummary     `json:"memory"`
	Decision       decision.Decision `json:"decision"`
	Performance    learning.Report   `json:"performance"`
	AdaptiveParams learning.Params   `json:"adaptive_params"`
}

// StatusReport gathers memory statistics, the current decision, the
// performance report and the adaptive parameters.
func (a *Agent) StatusReport(ctx context.Context) (StatusReport, error) {
	doc := a.memory.Snapshot()

	posts, err := a.posts.List(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("failed to load posts: %w", err)
	}

	return StatusReport{
		Memory: MemorySummary{
			TotalGenerations:  doc.TotalGenerations,
			ArticlesProcessed: len(doc.ArticleHistory),
			TopicsCovered:     len(doc.TopicsCovered),
			TopicDiversity:    doc.TopicDiversity(),
			LastGeneration:    doc.LastGeneration,
			SourcesUsed:       doc.SourcesUsed,
		},
		Decision:       decision.ShouldGenerateNow(doc, a.now()),
		Performance:    learning.AnalyzePerformance(doc, posts),
		AdaptiveParams: learning.AdaptiveParams(doc),
	}, nil
}
