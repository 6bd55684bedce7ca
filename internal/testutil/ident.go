package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined session and lease IDs for
// tests that assert on exact identifiers.
//
// Panics when a list is exhausted. This is a fail-fast approach to
// catch test misconfiguration (the test created more sessions or
// leases than it declared).
//
// Thread-safety: safe for concurrent use via an internal mutex.
type FixedIDGenerator struct {
	mu       sync.Mutex
	sessions []string
	leases   []string
	si, li   int
}

// NewFixedIDGenerator creates a generator that hands out the given
// IDs in order.
func NewFixedIDGenerator(sessions, leases []string) *FixedIDGenerator {
	return &FixedIDGenerator{sessions: sessions, leases: leases}
}

// SessionID returns the next predetermined session ID.
func (g *FixedIDGenerator) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.si >= len(g.sessions) {
		panic("FixedIDGenerator: session IDs exhausted")
	}
	id := g.sessions[g.si]
	g.si++
	return id
}

// LeaseID returns the next predetermined lease ID.
func (g *FixedIDGenerator) LeaseID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.li >= len(g.leases) {
		panic("FixedIDGenerator: lease IDs exhausted")
	}
	id := g.leases[g.li]
	g.li++
	return id
}

// SeqIDGenerator produces an unbounded deterministic ID sequence:
// "<prefix>-0001", "<prefix>-0002", ... per kind. The harness uses it
// because a scenario does not declare up front how many lease
// acquisitions its steps will need.
//
// Thread-safety: safe for concurrent use via an internal mutex.
type SeqIDGenerator struct {
	mu       sync.Mutex
	sessions int
	leases   int
}

// NewSeqIDGenerator creates a sequential generator starting at 1.
func NewSeqIDGenerator() *SeqIDGenerator {
	return &SeqIDGenerator{}
}

// SessionID returns the next session ID in sequence.
func (g *SeqIDGenerator) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions++
	return fmt.Sprintf("session-%04d", g.sessions)
}

// LeaseID returns the next lease ID in sequence.
func (g *SeqIDGenerator) LeaseID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leases++
	return fmt.Sprintf("lease-%04d", g.leases)
}
