// Package harness runs conversation scenarios against the real quiz
// engine and compares the transcripts to golden files.
//
// A scenario is a YAML file naming a CUE pack, a participant, and a
// list of messages to send, with optional expectations per step and
// on the final session row. Each run gets a fresh in-memory store, a
// manual clock, and sequential IDs, so transcripts are byte-stable
// and suitable for golden comparison.
package harness
