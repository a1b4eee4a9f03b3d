// Package ratelimit provides the request limiter shared by the agent engine
// and the metric judge of a single run.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter spaces out calls to a rate-limited backend. A nil *Limiter never
// blocks, so callers can hold one unconditionally.
type Limiter struct {
	lim *rate.Limiter
}

// New returns a limiter allowing requestsPerSecond with the given burst.
// A non-positive rate disables limiting and returns nil.
func New(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.lim.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Limit reports the configured rate, or rate.Inf when unlimited.
func (l *Limiter) Limit() rate.Limit {
	if l == nil {
		return rate.Inf
	}
	return l.lim.Limit()
}
