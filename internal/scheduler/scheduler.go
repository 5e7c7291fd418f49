// Package scheduler triggers generation cycles on a cron schedule. Every
// tick asks the pipeline for a normal cycle, so the agent's decision rules
// still choose whether the tick produces posts.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/easeaico/ai-post-agent/internal/logging"
	"github.com/easeaico/ai-post-agent/internal/service"
)

const stopTimeout = 30 * time.Second

// Runner runs one generation cycle.
type Runner interface {
	Run(ctx context.Context, opts service.RunOptions) (service.Result, error)
}

// Scheduler owns the cron loop.
type Scheduler struct {
	spec   string
	runner Runner
	logger *slog.Logger

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

// New creates a scheduler for a cron expression with a seconds field.
func New(spec string, runner Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		spec:   spec,
		runner: runner,
		logger: logging.OrDiscard(logger).With("component", "scheduler"),
	}
}

// Start registers the job and starts the cron loop. Ticks run with a
// context derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New(
		rcron.WithSeconds(),
		rcron.WithChain(rcron.SkipIfStillRunning(rcron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.spec, func() { s.Tick(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to register schedule %q: %w", s.spec, err)
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.logger.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(stopTimeout):
		s.logger.Warn("stop timeout waiting for running cycle")
	}
	cancel()
	s.logger.Info("scheduler stopped")
}

// Tick runs one scheduled cycle. A cycle already in progress is skipped.
func (s *Scheduler) Tick(ctx context.Context) {
	res, err := s.runner.Run(ctx, service.RunOptions{})
	switch {
	case errors.Is(err, service.ErrGenerationInProgress):
		s.logger.Info("tick skipped, generation in progress")
	case err != nil:
		s.logger.Error("scheduled generation failed", "error", err)
	case res.Skipped:
		s.logger.Info("tick skipped by decision", "code", res.Decision.Reason.Code, "reason", res.Decision.Reason.Message)
	default:
		s.logger.Info("scheduled generation finished", "run_id", res.RunID, "posts", len(res.Posts))
	}
}
