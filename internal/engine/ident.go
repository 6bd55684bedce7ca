package engine

import "github.com/google/uuid"

// IDGenerator mints identifiers for sessions and leases.
// Implemented by UUIDGenerator (production) and the deterministic
// generators in internal/testutil (tests).
type IDGenerator interface {
	// SessionID returns a new session identifier.
	SessionID() string

	// LeaseID returns a new lease identifier. Lease IDs must be
	// unique per acquisition attempt: Release only removes the lease
	// row when the presented ID matches the stored one.
	LeaseID() string
}

// UUIDGenerator mints RFC 4122 UUIDs.
//
// Sessions get UUIDv7: the embedded timestamp makes rows sortable by
// creation time, which helps when reading a participant's history.
// Leases get UUIDv4: pure randomness is all an acquisition token
// needs.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDGenerator struct{}

// SessionID returns a new time-sortable UUIDv7 string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) SessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// LeaseID returns a new random UUIDv4 string.
func (UUIDGenerator) LeaseID() string {
	return uuid.NewString()
}
