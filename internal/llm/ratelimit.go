package llm

import (
	"context"
	"sync"
	"time"
)

// rpsLimiter is a token bucket refilled lazily from the clock. Callers reserve
// a token up front and sleep until it matures, so waiters are served in
// arrival order without a refill goroutine.
type rpsLimiter struct {
	mu     sync.Mutex
	rate   float64 // tokens per second
	burst  float64
	tokens float64
	last   time.Time

	closeOnce sync.Once
	closed    chan struct{}
}

// newRPSLimiter returns nil (no limit) when rps <= 0. The bucket starts full.
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &rpsLimiter{
		rate:   rps,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
		closed: make(chan struct{}),
	}
}

// reserve takes one token and returns how long the caller must wait for it.
func (l *rpsLimiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if elapsed := now.Sub(l.last); elapsed > 0 {
		l.tokens += elapsed.Seconds() * l.rate
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.last = now
	}
	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens / l.rate * float64(time.Second))
}

func (l *rpsLimiter) cancel() {
	l.mu.Lock()
	l.tokens++
	l.mu.Unlock()
}

// Acquire blocks until a token is available, the context ends or the limiter
// is stopped. A canceled wait hands its token back.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-l.closed:
		return context.Canceled
	default:
	}
	wait := l.reserve(time.Now())
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		l.cancel()
		return ctx.Err()
	case <-l.closed:
		l.cancel()
		return context.Canceled
	}
}

// Stop wakes every waiter and rejects later calls. Safe to call more than once.
func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() { close(l.closed) })
}
