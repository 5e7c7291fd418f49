package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/easeaico/ai-post-agent/internal/config"
	"github.com/easeaico/ai-post-agent/internal/llm"
	"github.com/easeaico/ai-post-agent/internal/logging"
	"github.com/easeaico/ai-post-agent/internal/memory"
	"github.com/easeaico/ai-post-agent/internal/posts"
	"github.com/easeaico/ai-post-agent/internal/scraper"
	"github.com/easeaico/ai-post-agent/internal/service"
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	memory  *memory.FileStore
	posts   posts.Store
	scraper *scraper.Scraper
	agent   *service.Agent

	// pipeline is nil unless the app was built with a generator.
	pipeline *service.Pipeline
}

// newApp loads the configuration and wires the components. withGenerator
// also creates the Gemini generator and the pipeline, which needs an API key.
func newApp(ctx context.Context, configFile string, withGenerator bool) (*app, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	if withGenerator {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, nil, err
		}
	}

	mem, err := memory.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open agent memory: %w", err)
	}

	store, err := posts.Open(ctx, cfg.Posts.Backend, cfg.DataDir, cfg.Posts.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open posts store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close posts store", "error", err)
		}
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		memory:  mem,
		posts:   store,
		scraper: scraper.New(cfg.Scraper.Timeout, scraper.WithLogger(logger)),
		agent: service.NewAgent(mem, store,
			service.WithMaxArticles(cfg.Selection.MaxArticles),
			service.WithAgentLogger(logger),
		),
	}

	if withGenerator {
		gen, err := llm.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
			llm.WithMaxRetries(cfg.Gemini.MaxRetries),
			llm.WithLogger(logger),
		)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a.pipeline = service.NewPipeline(service.PipelineConfig{
			Agent:     a.agent,
			Source:    a.scraper,
			Generator: gen,
			Metadata:  a.scraper,
			Posts:     store,
			Logger:    logger,
		})
	}

	logger.Debug("agent initialized",
		"data_dir", cfg.DataDir,
		"posts_backend", cfg.Posts.Backend,
		"memory", mem.Path(),
	)
	return a, cleanup, nil
}
