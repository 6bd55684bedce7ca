// Package compiler turns administrator-authored CUE packs into
// questions and response rules.
//
// A pack is a directory of .cue files declaring two top-level structs:
//
//	question: { <id>: { text: ..., type: ..., orderIndex: ... } }
//	rule:     { <id>: { patterns: [...], priority: ..., response: ... } }
//
// Compilation uses the CUE SDK's Go API directly (not a CLI
// subprocess) and reports errors with source positions. Validation
// runs after compilation and collects every finding rather than
// stopping at the first.
package compiler
