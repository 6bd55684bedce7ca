// Package store provides SQLite-backed durable storage for quiz
// sessions, leases, answers, and administrator-authored packs.
//
// Five tables back the system:
//   - sessions: one row per quiz session, version-conditioned writes
//   - leases: at most one mutation claim per session
//   - answers: at most one record per (session, question), overwritten
//     on resubmission
//   - questions: the authored question pack
//   - rules: authored auto-response rules
//
// # Concurrency Control
//
// Two primitives, both expressed as single conditional SQL statements:
//
// Lease acquisition is one conditional upsert on the leases table - a
// fresh insert claims a free session, and the DO UPDATE branch
// displaces an expired holder. Zero rows affected means the lease is
// held. There is no read-then-write window.
//
// Session commits are version CAS: UPDATE ... WHERE id = ? AND
// version = ?, with version = version + 1 in the SET list. Zero rows
// affected distinguishes ErrNotFound from ErrVersionMismatch by a
// follow-up existence check inside the same transaction.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait out short lock contention
//   - foreign_keys=ON: answers cascade with their session
//   - Single connection: SQLite has one writer; a pool of one avoids
//     SQLITE_BUSY instead of retrying around it
//
// Timestamps are stored as unix epoch milliseconds and surfaced as UTC.
// Schema migrations are tracked through PRAGMA user_version.
package store
