package kaskade

import (
	"sync/atomic"
	"time"
)

// RateLimiter is a lock-free token bucket throttling the cloud layer.
type RateLimiter struct {
	tokens     int64
	maxTokens  int64
	refillRate time.Duration
	lastRefill int64
}

// NewRateLimiter creates a bucket holding maxTokens, refilling one token per
// refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     int64(maxTokens),
		maxTokens:  int64(maxTokens),
		refillRate: refillRate,
		lastRefill: time.Now().UnixNano(),
	}
}

// Allow consumes one token, refilling first based on elapsed time.
func (rl *RateLimiter) Allow() bool {
	rl.refill()
	for {
		current := atomic.LoadInt64(&rl.tokens)
		if current <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&rl.tokens, current, current-1) {
			return true
		}
	}
}

// Tokens returns the current token count, for metrics.
func (rl *RateLimiter) Tokens() int {
	return int(atomic.LoadInt64(&rl.tokens))
}

func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		return
	}
	now := time.Now().UnixNano()
	for {
		lastRefill := atomic.LoadInt64(&rl.lastRefill)
		tokensToAdd := (now - lastRefill) / int64(rl.refillRate)
		if tokensToAdd == 0 {
			return
		}
		if !atomic.CompareAndSwapInt64(&rl.lastRefill, lastRefill, lastRefill+tokensToAdd*int64(rl.refillRate)) {
			continue
		}
		for {
			current := atomic.LoadInt64(&rl.tokens)
			next := current + tokensToAdd
			if next > rl.maxTokens {
				next = rl.maxTokens
			}
			if atomic.CompareAndSwapInt64(&rl.tokens, current, next) {
				return
			}
		}
	}
}
