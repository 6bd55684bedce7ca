// Package quiz defines the domain model for quiz sessions: questions,
// sessions, answers, and the pure functions that operate on them.
//
// This package is the foundational layer. All other internal packages
// import quiz; quiz imports nothing internal, which keeps the
// dependency graph acyclic.
//
// Key design constraints:
//   - All mutation flows through Session.Version optimistic checks
//   - Answer normalization is NFKC + lowercase + trim, applied once at
//     the submission boundary
//   - Question visibility is recomputed from the answer set on every
//     turn, never cached
//   - JSON tags use snake_case
package quiz
