package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/dailyreads/internal/llm"
	"github.com/deusflow/dailyreads/internal/metrics"
)

// ErrBudgetExhausted is returned once the per-run request budget is spent.
var ErrBudgetExhausted = errors.New("model request budget exhausted")

type Config struct {
	MaxRequests       int // 0 means unlimited
	RequestsPerMinute int // 0 means unpaced
	Timeout           time.Duration
}

// Limiter wraps a Completer with a request budget, request pacing and a
// per-call timeout.
type Limiter struct {
	mu       sync.Mutex
	next     llm.Completer
	limiter  *rate.Limiter
	timeout  time.Duration
	max      int
	used     int
	failures int
}

func New(next llm.Completer, cfg Config) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Limiter{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		timeout: cfg.Timeout,
		max:     cfg.MaxRequests,
	}
}

// reserve takes one request from the budget.
func (l *Limiter) reserve() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.used >= l.max {
		slog.Warn("Model request budget reached", "used", l.used, "limit", l.max)
		return ErrBudgetExhausted
	}
	l.used++
	return nil
}

func (l *Limiter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := l.reserve(); err != nil {
		return "", err
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for model slot: %w", err)
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	metrics.Global.IncrementModelCalls()
	start := time.Now()
	out, err := l.next.Complete(ctx, prompt)
	if err != nil {
		l.mu.Lock()
		l.failures++
		l.mu.Unlock()
		metrics.Global.IncrementModelFailures()
		return "", err
	}
	slog.Debug("Model call finished", "duration", time.Since(start), "prompt_chars", len(prompt))
	return out, nil
}

// GetStats returns current limiter statistics.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"requests_used":  l.used,
		"requests_limit": l.max,
		"failures":       l.failures,
	}
}

// PrintStats logs current statistics.
func (l *Limiter) PrintStats() {
	stats := l.GetStats()
	slog.Info("Model usage",
		"used", stats["requests_used"],
		"limit", stats["requests_limit"],
		"failures", stats["failures"])
}
