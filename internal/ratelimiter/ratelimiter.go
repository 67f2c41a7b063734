// Package ratelimiter throttles storage operator calls with a token bucket.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate.
//
// A nil *RateLimiter admits everything, so callers can hold one unconditionally
// and leave it nil when rate limiting is disabled.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter admitting operationsPerSecond operations per
// second with the given burst.
//
// Special cases:
//   - operationsPerSecond <= 0: returns nil (unlimited)
//   - burst < 1: a burst of 1 is used, since a zero burst admits nothing
//
// Example:
//
//	// 100 ops/s sustained, bursts of 200
//	limiter := New(100, 200)
func New(operationsPerSecond float64, burst int) *RateLimiter {
	if operationsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(operationsPerSecond), burst),
	}
}

// Allow reports whether an operation may run now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns the context error (or a rate error when the wait would exceed the
// context deadline) if no token could be acquired.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}

// Tokens returns the number of tokens currently available. Unlimited
// limiters report +Inf.
func (r *RateLimiter) Tokens() float64 {
	if r == nil {
		return float64(rate.Inf)
	}
	return r.limiter.Tokens()
}
