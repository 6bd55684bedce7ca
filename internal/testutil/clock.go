package testutil

import (
	"sync"
	"time"
)

// ManualClock is a wall clock under test control.
//
// It implements engine.Clock. Time only moves when the test calls
// Advance or Set, which makes lease expiry and per-answer timing
// deterministic.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current frozen instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to an absolute instant. The clock does not
// enforce monotonicity; tests that need a rewind get one.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
