// Package vocab holds the concept table: the fixed mapping from symbolic
// concepts to ultrasonic carrier frequencies.
//
// The vocabulary is authored in CUE (vocabulary.cue, embedded at build time)
// and compiled once at process start. CUE enforces the per-symbol band
// constraint; the Go loader enforces the global invariant that no two
// frequencies sit closer than twice the decoder's matching tolerance, so any
// additive superposition of concepts stays separable by peak-picking.
//
// The table is immutable after load and safe for concurrent use without
// locking. Symbol lookups are NFC-normalized and case-insensitive so that
// externally supplied text (see TextTranslator) cannot miss a table entry on
// a Unicode technicality.
package vocab
