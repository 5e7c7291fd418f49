package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

const maxBackoff = 30 * time.Second

// generateWithRetry retries transient model failures with exponential backoff.
func (g *Generator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		text, err := g.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == g.maxRetries {
			break
		}
		g.logger.Warn("retrying generation", "attempt", attempt+1, "error", err)
		if err := g.backoff(ctx, attempt); err != nil {
			return "", lastErr
		}
	}
	if g.maxRetries > 0 && isRetryable(lastErr) {
		return "", fmt.Errorf("after %d retries: %w", g.maxRetries, lastErr)
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	msg := err.Error()
	// Rate limits, server errors and connection issues.
	for _, s := range []string{"429", "500", "502", "503", "504", "RESOURCE_EXHAUSTED", "UNAVAILABLE", "connection refused", "timeout", "EOF", "reset by peer"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (g *Generator) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > maxBackoff {
		delay = maxBackoff
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
