package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// AcquireLease attempts to claim the exclusive mutation lease for a
// session. Returns true when the claim succeeded.
//
// The claim is a single conditional upsert: a fresh insert claims a
// free session, and the DO UPDATE branch displaces a holder whose
// lease expired at or before now. An unexpired lease leaves the row
// untouched, which SQLite reports as zero rows affected. One statement
// covers both paths, so there is no read-then-write window for two
// acquirers to slip through.
func (s *Store) AcquireLease(ctx context.Context, lease quiz.Lease, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO leases (session_id, lease_id, holder, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			lease_id   = excluded.lease_id,
			holder     = excluded.holder,
			expires_at = excluded.expires_at
		WHERE leases.expires_at <= ?
	`,
		lease.SessionID,
		lease.LeaseID,
		lease.Holder,
		toMillis(lease.ExpiresAt),
		toMillis(now),
	)
	if err != nil {
		return false, fmt.Errorf("acquire lease: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lease: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ReleaseLease removes a lease if it is still held under the given
// lease ID. Returns false when the lease is gone or was taken over;
// callers treat that as informational, not an error.
func (s *Store) ReleaseLease(ctx context.Context, sessionID, leaseID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM leases
		WHERE session_id = ? AND lease_id = ?
	`, sessionID, leaseID)
	if err != nil {
		return false, fmt.Errorf("release lease: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("release lease: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ForceReleaseLease removes a session's lease regardless of holder.
// Used by restart and administrative reset. Returns false when there
// was no lease to remove.
func (s *Store) ForceReleaseLease(ctx context.Context, sessionID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM leases WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return false, fmt.Errorf("force release lease: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("force release lease: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetLease retrieves the lease row for a session.
// Returns ErrNotFound when the session has no lease.
func (s *Store) GetLease(ctx context.Context, sessionID string) (quiz.Lease, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, lease_id, holder, expires_at
		FROM leases
		WHERE session_id = ?
	`, sessionID)

	var lease quiz.Lease
	var expiresAt int64
	err := row.Scan(&lease.SessionID, &lease.LeaseID, &lease.Holder, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Lease{}, ErrNotFound
	}
	if err != nil {
		return quiz.Lease{}, fmt.Errorf("scan lease: %w", err)
	}

	lease.ExpiresAt = fromMillis(expiresAt)
	return lease, nil
}

// SweepExpiredLeases deletes every lease that expired at or before
// now and returns the number removed. Expiry is otherwise passive;
// the sweep only reclaims rows for hygiene, correctness never depends
// on it running.
func (s *Store) SweepExpiredLeases(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM leases WHERE expires_at <= ?
	`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("sweep expired leases: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep expired leases: rows affected: %w", err)
	}

	return removed, nil
}
