package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/posts"
	"github.com/easeaico/ai-post-agent/internal/service"
)

func (s *Server) fail(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		s.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
		msg = msg + ": " + err.Error()
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}

func (s *Server) handleListPosts(c *gin.Context) {
	list, err := s.posts.List(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to load posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(list),
		"posts":   list,
	})
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.posts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, posts.ErrNotFound) {
		s.fail(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to load post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"post":    post,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	list, err := s.posts.List(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to load posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_posts": len(list),
			"sources":     article.SourceCounts(list),
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "healthy",
		"message": "API is running",
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))

	status, err := s.generator.Start(s.baseCtx, service.RunOptions{Force: force})
	if errors.Is(err, service.ErrGenerationInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "a generation is already in progress",
			"status":  status,
		})
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to start generation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "generation started",
		"status":  status,
	})
}

func (s *Server) handleGenerateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  s.generator.Status(),
	})
}

func (s *Server) handleAgentStatus(c *gin.Context) {
	report, err := s.agent.StatusReport(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to build agent status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"agent":   report,
	})
}

func (s *Server) handleAgentMemory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"memory":  s.agent.Memory(),
	})
}

func (s *Server) handleFetchMetadata(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		s.fail(c, http.StatusBadRequest, "url is required", nil)
		return
	}

	md, err := s.metadata.FetchMetadata(c.Request.Context(), url)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to fetch metadata", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"metadata": md,
	})
}

func (s *Server) handleCustomSource(c *gin.Context) {
	var req service.CustomSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "url is required", nil)
		return
	}

	res, err := s.generator.AddCustomSource(c.Request.Context(), req)
	if errors.Is(err, service.ErrURLRequired) {
		s.fail(c, http.StatusBadRequest, "url is required", nil)
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to process source", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"article": res.Article,
		"post":    res.Post,
		"message": "post generated from custom source",
	})
}
