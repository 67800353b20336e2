package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Limiter is the cooperative throttle for the translation backend: a fixed
// delay between calls plus a per-run budget. The backend itself enforces
// nothing, so callers must go through Acquire before every request.
type Limiter struct {
	mu    sync.Mutex
	delay time.Duration
	max   int // 0 = unlimited
	used  int
	last  time.Time
}

func New(delay time.Duration, max int) *Limiter {
	return &Limiter{delay: delay, max: max}
}

// Acquire blocks until the inter-call delay has elapsed, then spends one
// unit of the budget. Returns an error when the budget is exhausted.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.max > 0 && l.used >= l.max {
		l.mu.Unlock()
		slog.Warn("translation budget exhausted", "used", l.used, "max", l.max)
		return fmt.Errorf("translation budget exhausted (%d/%d)", l.used, l.max)
	}

	wait := time.Duration(0)
	if !l.last.IsZero() {
		if elapsed := time.Since(l.last); elapsed < l.delay {
			wait = l.delay - elapsed
		}
	}
	l.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	l.mu.Lock()
	l.used++
	l.last = time.Now()
	l.mu.Unlock()
	return nil
}

// Used reports how much of the budget has been spent.
func (l *Limiter) Used() (used, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used, l.max
}
