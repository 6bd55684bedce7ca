package engine

import "time"

// Clock supplies wall-clock time to everything in the engine that
// reads it: lease expiry, answer timestamps, per-answer timing.
//
// Injecting the clock keeps lease-expiry behavior testable without
// real sleeps. Production code uses SystemClock; tests use
// testutil.ManualClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time in UTC. Stored timestamps are always
// UTC so scans round-trip without zone drift.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
