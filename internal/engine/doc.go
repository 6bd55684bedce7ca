// Package engine implements the quizflow session transaction manager.
//
// The engine drives a participant through a conditionally-filtered
// question list while guaranteeing that exactly one mutation is
// applied to a session at a time, even when inbound messages are
// handled by concurrent workers.
//
// ARCHITECTURE:
//
// Lease-Serialized Transactions:
// Every session mutation runs inside an exclusive, time-bounded lease
// held in the store's leases table. The Executor wraps a unit of work
// in "acquire lease -> read fresh state -> run business function ->
// conditional write -> release lease", with bounded linear-backoff
// retries on lease contention. Commits are conditioned on the session
// version loaded inside the lease, so successful transactions for one
// session observe a total order.
//
// Crash behavior:
// A holder that dies mid-transaction blocks the session only until
// its lease expires (default 30s). Expiry is passive - the next
// acquirer's single conditional write displaces the stale row; no
// background sweeper is needed for correctness.
//
// Flow evaluation:
// The visible question list is recomputed from (all questions, the
// session's answers) on every turn, never cached. An answer that
// satisfies a conditional dependency makes the dependent question
// reachable on the very next prompt.
//
// The facade (Service) converts user-input errors into re-prompt
// replies, surfaces concurrency errors only after retries are
// exhausted, and marks sessions interrupted on abnormal failures so
// recovery does not silently resume half-applied state.
package engine
