package sheets

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between consecutive spreadsheet API
// requests. The upstream quota is per-minute; spacing requests out keeps a
// parallel ingestion from burning the whole window in one burst.
type Limiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	next     time.Time
}

// NewLimiter creates a limiter with the given minimum inter-request delay.
// A non-positive delay disables the limiter.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{minDelay: minDelay}
}

// Wait blocks until the caller may issue its request, or until the context
// is done. Waiters are granted slots in arrival order.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.minDelay <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	start := l.next
	if now := time.Now(); start.Before(now) {
		start = now
	}
	l.next = start.Add(l.minDelay)
	l.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return ctx.Err()
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
