package notification

import (
	"sync"
	"time"

	"github.com/Veraticus/opencode-reminder/pkg/interfaces"
)

// TokenBucketRateLimiter implements token bucket rate limiting
type TokenBucketRateLimiter struct {
	capacity   int
	tokens     int
	refillRate time.Duration
	lastRefill time.Time
	clock      interfaces.Clock
	mu         sync.Mutex
}

// NewTokenBucketRateLimiter creates a full bucket that regains one token every refillRate
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	return NewTokenBucketRateLimiterWithClock(capacity, refillRate, interfaces.SystemClock{})
}

// NewTokenBucketRateLimiterWithClock is NewTokenBucketRateLimiter with an injected clock
func NewTokenBucketRateLimiterWithClock(capacity int, refillRate time.Duration, clock interfaces.Clock) *TokenBucketRateLimiter {
	if capacity < 0 {
		capacity = 0
	}
	return &TokenBucketRateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: clock.Now(),
		clock:      clock,
	}
}

// Allow checks if a request is allowed under the rate limit
func (tb *TokenBucketRateLimiter) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// refill adds the tokens earned since the last refill. Partial periods carry over.
func (tb *TokenBucketRateLimiter) refill() {
	now := tb.clock.Now()
	if tb.refillRate <= 0 {
		tb.lastRefill = now
		return
	}

	periods := int(now.Sub(tb.lastRefill) / tb.refillRate)
	if periods <= 0 {
		return
	}

	// A full bucket earns nothing, so idle time is not banked
	if tb.tokens >= tb.capacity {
		tb.lastRefill = now
		return
	}

	tb.tokens = min(tb.capacity, tb.tokens+periods)
	tb.lastRefill = tb.lastRefill.Add(time.Duration(periods) * tb.refillRate)
}
