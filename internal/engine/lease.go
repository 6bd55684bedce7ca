package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/store"
)

// DefaultLeaseTTL bounds how long a crashed holder can block a
// session. A single transaction (read + business logic + write) must
// complete well within this window.
const DefaultLeaseTTL = 30 * time.Second

// LeaseManager hands out the per-session exclusive lease that
// serializes mutations.
//
// The manager owns no state of its own: the lease lives in the
// store's leases table, and acquisition is a single atomic
// conditional write there. At most one unexpired lease exists per
// session; an expired lease is displaced by the next acquirer's
// write, never swept in the synchronous path.
type LeaseManager struct {
	store *store.Store
	clock Clock
	ids   IDGenerator
	ttl   time.Duration
}

// NewLeaseManager creates a lease manager over the given store.
// A zero ttl selects DefaultLeaseTTL.
func NewLeaseManager(st *store.Store, clock Clock, ids IDGenerator, ttl time.Duration) *LeaseManager {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &LeaseManager{store: st, clock: clock, ids: ids, ttl: ttl}
}

// TTL returns the lease duration this manager issues.
func (m *LeaseManager) TTL() time.Duration {
	return m.ttl
}

// Acquire attempts to claim the exclusive lease for a session.
//
// Succeeds iff no unexpired lease exists, in which case it returns
// the issued lease ID and ok=true. A held lease returns ok=false with
// no error: contention is an expected outcome, not a failure. The
// holder label describes the operation for diagnostics.
func (m *LeaseManager) Acquire(ctx context.Context, sessionID, holder string) (leaseID string, ok bool, err error) {
	now := m.clock.Now()
	lease := quiz.Lease{
		SessionID: sessionID,
		LeaseID:   m.ids.LeaseID(),
		Holder:    holder,
		ExpiresAt: now.Add(m.ttl),
	}

	acquired, err := m.store.AcquireLease(ctx, lease, now)
	if err != nil {
		return "", false, fmt.Errorf("acquire lease for session %s: %w", sessionID, err)
	}
	if !acquired {
		slog.Debug("lease held by another worker",
			"session_id", sessionID,
			"holder", holder,
		)
		return "", false, nil
	}

	slog.Debug("lease acquired",
		"session_id", sessionID,
		"lease_id", lease.LeaseID,
		"holder", holder,
		"expires_at", lease.ExpiresAt,
	)
	return lease.LeaseID, true, nil
}

// Release gives the lease back, presenting the ID it was issued
// under. Returns false when the lease was already gone or reclaimed
// by another acquirer after expiry; callers must not treat that as
// fatal - the session is no longer theirs either way.
func (m *LeaseManager) Release(ctx context.Context, sessionID, leaseID string) (bool, error) {
	released, err := m.store.ReleaseLease(ctx, sessionID, leaseID)
	if err != nil {
		return false, fmt.Errorf("release lease for session %s: %w", sessionID, err)
	}
	if !released {
		slog.Debug("lease already gone at release",
			"session_id", sessionID,
			"lease_id", leaseID,
		)
	}
	return released, nil
}

// ForceRelease removes a session's lease regardless of holder.
// Restart and administrative reset use it to unblock a session whose
// holder is gone; the result is best-effort information only.
func (m *LeaseManager) ForceRelease(ctx context.Context, sessionID string) (bool, error) {
	released, err := m.store.ForceReleaseLease(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("force release lease for session %s: %w", sessionID, err)
	}
	if released {
		slog.Info("lease force-released", "session_id", sessionID)
	}
	return released, nil
}
