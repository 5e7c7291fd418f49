// Package server exposes the posts and the agent over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/logging"
	"github.com/easeaico/ai-post-agent/internal/memory"
	"github.com/easeaico/ai-post-agent/internal/scraper"
	"github.com/easeaico/ai-post-agent/internal/service"
)

const shutdownTimeout = 10 * time.Second

// PostReader reads the posts collection.
type PostReader interface {
	List(ctx context.Context) ([]article.Post, error)
	Get(ctx context.Context, id string) (article.Post, error)
}

// Generator starts and reports generation cycles.
type Generator interface {
	Start(ctx context.Context, opts service.RunOptions) (service.Status, error)
	Status() service.Status
	AddCustomSource(ctx context.Context, req service.CustomSourceRequest) (service.CustomSourceResult, error)
}

// AgentInspector exposes the agent's state.
type AgentInspector interface {
	StatusReport(ctx context.Context) (service.StatusReport, error)
	Memory() *memory.Document
}

// MetadataFetcher reads page metadata.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, url string) (scraper.Metadata, error)
}

// Config holds the collaborators of the server.
type Config struct {
	Posts     PostReader
	Generator Generator
	Agent     AgentInspector
	Metadata  MetadataFetcher
	Logger    *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	posts     PostReader
	generator Generator
	agent     AgentInspector
	metadata  MetadataFetcher
	logger    *slog.Logger
	router    *gin.Engine

	// baseCtx bounds background generations started through the API.
	baseCtx context.Context
}

// New creates the server and registers its routes. Background generations
// run with ctx, not with the request context.
func New(ctx context.Context, cfg Config) *Server {
	router := gin.New()

	s := &Server{
		posts:     cfg.Posts,
		generator: cfg.Generator,
		agent:     cfg.Agent,
		metadata:  cfg.Metadata,
		logger:    logging.OrDiscard(cfg.Logger).With("component", "server"),
		router:    router,
		baseCtx:   ctx,
	}

	router.Use(gin.Recovery(), s.requestLogger(), cors.Default())

	api := router.Group("/api")
	{
		api.GET("/posts", s.handleListPosts)
		api.GET("/posts/:id", s.handleGetPost)
		api.GET("/stats", s.handleStats)
		api.GET("/health", s.handleHealth)
		api.POST("/generate", s.handleGenerate)
		api.GET("/generate/status", s.handleGenerateStatus)
		api.GET("/agent/status", s.handleAgentStatus)
		api.GET("/agent/memory", s.handleAgentMemory)
		api.GET("/fetch-metadata", s.handleFetchMetadata)
		api.POST("/custom-source", s.handleCustomSource)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
