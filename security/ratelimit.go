package security

import (
	"context"

	"golang.org/x/time/rate"
)

// APILimiter caps outbound calls to the provider API using a token
// bucket. The token exchange and the profile fetch share one bucket so
// a burst of concurrent callbacks cannot exceed the provider's request
// quota and trip its 429 responses.
//
// A nil *APILimiter is valid and performs no limiting, so callers can
// thread an optional limiter through without nil checks.
type APILimiter struct {
	limiter *rate.Limiter
}

// NewAPILimiter creates a limiter allowing perSecond sustained calls
// with the given burst. perSecond <= 0 disables limiting.
func NewAPILimiter(perSecond float64, burst int) *APILimiter {
	if perSecond <= 0 {
		return &APILimiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &APILimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call may proceed or the context is done. The
// context error is returned on cancellation so callers can classify it
// as a transport-level failure.
func (l *APILimiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without blocking.
func (l *APILimiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
