package api

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket that throttles outgoing API calls. A nil
// *RateLimiter never blocks.
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
	mu             sync.Mutex
	history        []time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond calls per
// second. Non-positive rates return nil, which disables limiting.
func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return &RateLimiter{
		tokens:         requestsPerSecond,
		maxTokens:      requestsPerSecond,
		refillInterval: time.Second / time.Duration(requestsPerSecond),
		lastRefill:     time.Now(),
		history:        make([]time.Time, 0, 100),
	}
}

func (rl *RateLimiter) refill(now time.Time) {
	if add := int(now.Sub(rl.lastRefill) / rl.refillInterval); add > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+add)
		rl.lastRefill = now
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	for rl.tokens <= 0 {
		rl.mu.Unlock()
		select {
		case <-ctx.Done():
			rl.mu.Lock()
			return ctx.Err()
		case <-time.After(rl.refillInterval):
		}
		rl.mu.Lock()
		rl.refill(time.Now())
	}

	rl.tokens--
	rl.history = append(rl.history, time.Now())
	if len(rl.history) > 100 {
		rl.history = rl.history[len(rl.history)-100:]
	}
	return nil
}

// Stats returns the number of calls admitted in the last minute and second.
func (rl *RateLimiter) Stats() (lastMinute, lastSecond int) {
	if rl == nil {
		return 0, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for _, t := range rl.history {
		if now.Sub(t) < time.Minute {
			lastMinute++
		}
		if now.Sub(t) < time.Second {
			lastSecond++
		}
	}
	return
}
