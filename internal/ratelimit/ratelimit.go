// Package ratelimit wraps the pack's generic sliding-window algorithm in a
// per-domain admission gate: §4.B's RateWindow is keyed purely by canonical
// domain, so this package drops the teacher's IP/user/tier generality and
// exposes a single Admit call.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"newsnexus/internal/apperr"
	baseratelimit "newsnexus/pkg/ratelimit"
)

// DefaultLimit and DefaultWindow match RATE_LIMIT/RATE_WINDOW's defaults.
const (
	DefaultLimit  = 10
	DefaultWindow = 60 * time.Second
)

// Limiter admits or rejects requests per canonical domain using a sliding
// window. It is a process-wide singleton; all methods are safe for
// concurrent use.
type Limiter struct {
	algo   *baseratelimit.SlidingWindowAlgorithm
	store  *baseratelimit.InMemoryRateLimitStore
	limit  int
	window time.Duration
}

// New builds a Limiter with the given per-domain limit and window.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		algo:   baseratelimit.NewSlidingWindowAlgorithm(&baseratelimit.SystemClock{}),
		store:  baseratelimit.NewInMemoryRateLimitStore(baseratelimit.DefaultInMemoryStoreConfig()),
		limit:  limit,
		window: window,
	}
}

// Admit returns nil if domain is within its rate window, or an
// *apperr.Error with Code() == apperr.RateLimited otherwise. The limiter
// is consulted before fetch, not before cache lookup.
func (l *Limiter) Admit(ctx context.Context, domain string) error {
	decision, err := l.algo.IsAllowed(ctx, domain, l.store, l.limit, l.window)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "rate limit check failed", err)
	}
	if !decision.Allowed {
		return apperr.New(apperr.RateLimited, fmt.Sprintf("domain %s exceeded %d requests per %s", domain, l.limit, l.window))
	}
	return nil
}
