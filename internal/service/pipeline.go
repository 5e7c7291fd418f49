package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/decision"
	"github.com/easeaico/ai-post-agent/internal/learning"
	"github.com/easeaico/ai-post-agent/internal/logging"
	"github.com/easeaico/ai-post-agent/internal/scraper"
)

var (
	// ErrGenerationInProgress is returned when a cycle is requested while another one runs.
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	// ErrNoArticles is returned when the sources produced no candidate.
	ErrNoArticles = errors.New("no articles found")
	// ErrNoPosts is returned when no post could be generated.
	ErrNoPosts = errors.New("no posts could be generated")
	// ErrURLRequired is returned by AddCustomSource without a URL.
	ErrURLRequired = errors.New("url is required")
)

// CustomSource is the name recorded for user supplied articles.
const CustomSource = "Custom Source"

// DefaultCustomDescription is used when a custom article has no description.
const DefaultCustomDescription = "Custom article"

// ArticleSource supplies candidate articles.
type ArticleSource interface {
	Articles(ctx context.Context) ([]article.Article, error)
}

// PostGenerator writes posts for articles.
type PostGenerator interface {
	GeneratePost(ctx context.Context, a article.Article, p learning.Params) (article.Post, error)
	GeneratePosts(ctx context.Context, articles []article.Article, p learning.Params) ([]article.Post, error)
}

// MetadataFetcher reads the title and description of a web page.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, url string) (scraper.Metadata, error)
}

// PostStore is the posts collection used by the pipeline.
type PostStore interface {
	PostLister
	Add(ctx context.Context, posts ...article.Post) error
}

// RunOptions control a generation cycle.
type RunOptions struct {
	// Force skips the decision gate.
	Force bool
	// Manual bypasses the agent brain: every scraped article is used with the
	// default parameters and nothing is learned.
	Manual bool
	// Confirm, when set, is asked before generating after a positive decision.
	Confirm func(decision.Decision) bool
}

// Result describes a finished cycle.
type Result struct {
	RunID      string            `json:"run_id"`
	Decision   decision.Decision `json:"decision"`
	Skipped    bool              `json:"skipped"`
	Candidates int               `json:"candidates"`
	Selected   []article.Article `json:"selected"`
	Params     learning.Params   `json:"params"`
	Posts      []article.Post    `json:"posts"`
}

// Pipeline runs generation cycles, one at a time.
type Pipeline struct {
	agent     *Agent
	source    ArticleSource
	generator PostGenerator
	metadata  MetadataFetcher
	posts     PostStore
	logger    *slog.Logger
	now       func() time.Time

	status *statusTracker
	wg     sync.WaitGroup
}

// PipelineConfig holds the collaborators of a Pipeline.
type PipelineConfig struct {
	Agent     *Agent
	Source    ArticleSource
	Generator PostGenerator
	Metadata  MetadataFetcher
	Posts     PostStore
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		agent:     cfg.Agent,
		source:    cfg.Source,
		generator: cfg.Generator,
		metadata:  cfg.Metadata,
		posts:     cfg.Posts,
		logger:    logging.OrDiscard(cfg.Logger).With("component", "pipeline"),
		now:       now,
		status:    &statusTracker{now: now},
	}
}

// Agent returns the agent brain used by the pipeline.
func (p *Pipeline) Agent() *Agent {
	return p.agent
}

// Status returns the state of the current or last cycle.
func (p *Pipeline) Status() Status {
	return p.status.snapshot()
}

// Run executes one cycle synchronously.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Result, error) {
	runID := uuid.NewString()
	if !p.status.begin(runID) {
		return Result{}, ErrGenerationInProgress
	}
	return p.run(ctx, runID, opts)
}

// Start executes one cycle in the background and returns its initial status.
func (p *Pipeline) Start(ctx context.Context, opts RunOptions) (Status, error) {
	runID := uuid.NewString()
	if !p.status.begin(runID) {
		return p.Status(), ErrGenerationInProgress
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.run(ctx, runID, opts); err != nil {
			p.logger.Error("background generation failed", "run_id", runID, "error", err)
		}
	}()
	return p.Status(), nil
}

// Wait blocks until every background cycle has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, runID string, opts RunOptions) (res Result, err error) {
	res.RunID = runID
	logger := p.logger.With("run_id", runID)

	defer func() {
		if err != nil {
			p.status.finish("failed", err.Error(), 0)
			return
		}
		if res.Skipped {
			p.status.finish("skipped", "agent decided not to generate: "+res.Decision.Reason.Message, 0)
			return
		}
		p.status.finish(fmt.Sprintf("completed: %d posts generated", len(res.Posts)), "", len(res.Posts))
	}()

	if !opts.Manual {
		eval, err := p.agent.EvaluateAndDecide(ctx)
		if err != nil {
			return res, err
		}
		res.Decision = eval.Decision
		logger.Info("decision", "run", eval.Decision.Run, "code", eval.Decision.Reason.Code, "reason", eval.Decision.Reason.Message, "force", opts.Force)

		if !eval.Decision.Run && !opts.Force {
			res.Skipped = true
			return res, nil
		}
		if opts.Confirm != nil && !opts.Confirm(eval.Decision) {
			res.Skipped = true
			return res, nil
		}
	}

	p.status.progress("searching articles")
	candidates, err := p.source.Articles(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to collect articles: %w", err)
	}
	res.Candidates = len(candidates)
	if len(candidates) == 0 {
		return res, ErrNoArticles
	}

	if opts.Manual {
		res.Selected = candidates
		res.Params = learning.DefaultParams()
	} else {
		p.status.progress(fmt.Sprintf("selecting best articles from %d candidates", len(candidates)))
		res.Selected = p.agent.ProcessArticles(candidates)
		res.Params = p.agent.GetAdaptiveParams()
	}
	if len(res.Selected) == 0 {
		return res, ErrNoArticles
	}

	p.status.progress(fmt.Sprintf("generating %d posts", len(res.Selected)))
	generated, err := p.generator.GeneratePosts(ctx, res.Selected, res.Params)
	if err != nil {
		return res, fmt.Errorf("failed to generate posts: %w", err)
	}
	if len(generated) == 0 {
		return res, ErrNoPosts
	}

	p.status.progress("saving posts")
	now := p.now()
	for i := range generated {
		generated[i].ID = article.NewPostID(now, i)
	}
	if err := p.posts.Add(ctx, generated...); err != nil {
		return res, fmt.Errorf("failed to save posts: %w", err)
	}
	res.Posts = generated

	if !opts.Manual {
		p.status.progress("learning from this generation")
		if err := p.agent.LearnFromGeneration(res.Selected, generated); err != nil {
			return res, err
		}
	}

	logger.Info("generation finished", "candidates", res.Candidates, "selected", len(res.Selected), "posts", len(generated))
	return res, nil
}

// CustomSourceRequest is a user supplied article.
type CustomSourceRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CustomSourceResult is the article built from a request and its post.
type CustomSourceResult struct {
	Article article.Article `json:"article"`
	Post    article.Post    `json:"post"`
}

// AddCustomSource generates, saves and learns from a post for a user
// supplied URL. Missing title or description are read from the page; a
// failed lookup is not an error.
func (p *Pipeline) AddCustomSource(ctx context.Context, req CustomSourceRequest) (CustomSourceResult, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return CustomSourceResult{}, ErrURLRequired
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if (title == "" || description == "") && p.metadata != nil {
		md, err := p.metadata.FetchMetadata(ctx, url)
		if err != nil {
			p.logger.Warn("metadata lookup failed", "url", url, "error", err)
		}
		if title == "" {
			title = md.Title
		}
		if description == "" {
			description = md.Description
		}
	}
	if title == "" {
		title = url
	}
	if description == "" {
		description = DefaultCustomDescription
	}

	a := article.Article{
		Title:       title,
		URL:         url,
		Description: description,
		Source:      CustomSource,
		ScrapedAt:   p.now(),
	}
	if err := a.Validate(); err != nil {
		return CustomSourceResult{}, err
	}

	post, err := p.generator.GeneratePost(ctx, a, p.agent.GetAdaptiveParams())
	if err != nil {
		return CustomSourceResult{}, err
	}
	post.ID = article.NewCustomPostID(p.now())

	if err := p.posts.Add(ctx, post); err != nil {
		return CustomSourceResult{}, fmt.Errorf("failed to save post: %w", err)
	}
	if err := p.agent.LearnFromGeneration([]article.Article{a}, []article.Post{post}); err != nil {
		return CustomSourceResult{}, err
	}

	p.logger.Info("custom source processed", "url", url, "post_id", post.ID)
	return CustomSourceResult{Article: a, Post: post}, nil
}
