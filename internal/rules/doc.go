// Package rules matches inbound messages against administrator-authored
// response rules and diagnoses overlap between independently authored
// rules.
//
// Matching is deterministic for a fixed rule set and instant: candidates
// are scored by pattern kind, then ordered by declared priority with
// stable tie-breaks. Conflicts between rules are surfaced for review;
// the package never merges or removes a rule on its own.
package rules
