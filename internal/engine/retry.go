package engine

import (
	"context"
	"time"
)

// RetryPolicy bounds how hard the executor fights for a contended
// session before giving up.
//
// Backoff is linear: attempt n sleeps n * BaseDelay before the next
// acquisition. Combined with the lease TTL this puts a hard ceiling
// on how long any single Execute call can run, so no retry loop is
// unboundedly blocking.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the
	// first. Exhausting it surfaces LOCK_UNAVAILABLE or
	// CONCURRENT_MODIFICATION to the caller.
	MaxAttempts int

	// BaseDelay is the backoff unit between attempts.
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the transaction contract: three attempts
// with a 50ms backoff unit. A held lease is usually released within a
// few milliseconds (the business function is in-memory computation
// plus a handful of storage calls), so short linear waits win most
// contention without stalling the caller.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   50 * time.Millisecond,
}

// Backoff returns how long to wait after the given failed attempt
// (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.BaseDelay
}

// Sleep waits out the backoff for a failed attempt, honoring context
// cancellation. Cancellation between attempts is the only mid-flight
// cancellation point the executor supports: once the business
// function starts under a held lease it runs to completion.
func (p RetryPolicy) Sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Backoff(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
