package service

import (
	"sync"
	"time"
)

// Status describes the current or most recent generation cycle.
type Status struct {
	RunID          string     `json:"run_id,omitempty"`
	IsGenerating   bool       `json:"is_generating"`
	Progress       string     `json:"progress"`
	Error          string     `json:"error,omitempty"`
	PostsGenerated int        `json:"posts_generated"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// statusTracker guards the generation status. At most one cycle may be
// marked as generating at any time.
type statusTracker struct {
	mu     sync.RWMutex
	status Status
	now    func() time.Time
}

// begin marks a new cycle as running. It returns false when one is already running.
func (t *statusTracker) begin(runID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.IsGenerating {
		return false
	}
	started := t.now()
	t.status = Status{
		RunID:        runID,
		IsGenerating: true,
		Progress:     "evaluating",
		StartedAt:    &started,
	}
	return true
}

func (t *statusTracker) progress(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Progress = msg
}

// finish ends the running cycle. A non-empty errMsg is recorded as the
// cycle's error.
func (t *statusTracker) finish(progress, errMsg string, posts int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	finished := t.now()
	t.status.IsGenerating = false
	t.status.Progress = progress
	t.status.Error = errMsg
	t.status.PostsGenerated = posts
	t.status.FinishedAt = &finished
}

func (t *statusTracker) snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
