package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests sent to an object store using the token
// bucket algorithm.
//
// Every probe and every ranged fetch attempt (retries included) consumes one
// token. When the bucket is empty the caller waits, so a burst of reads is
// smoothed into the sustained rate instead of being rejected.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained requests with
// bursts of up to burst requests.
//
// Special cases:
//   - requestsPerSecond = 0: no limit
//   - burst = 0: defaults to requestsPerSecond
//
// Example:
//
//	// 100 requests/s to the bucket, bursts of 200
//	limiter := New(100, 200)
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Wait blocks until a token is available or ctx ends.
//
// Returns nil once a token was taken, or an error wrapping the context's
// error when the wait was abandoned.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow takes a token if one is available without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Unlimited reports whether the limiter lets every request through.
func (r *RateLimiter) Unlimited() bool {
	return r.limiter.Limit() == rate.Inf
}

// Tokens returns the number of tokens currently available.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
