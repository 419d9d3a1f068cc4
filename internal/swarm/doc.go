// Package swarm synchronizes a set of agents on a shared carrier
// frequency using only the audio channel between them.
//
// Each round every agent broadcasts its current frequency as a waveform
// (mode-dependent: pure tone, tone plus concept chord, FM state carrier,
// random tone, or silence), then samples a few neighbors, decodes their
// transmissions, and pulls its own frequency toward the neighborhood mean
// with a fixed coupling strength. The coordinator drives the round loop,
// enforces the round barrier, and reports per-round convergence
// snapshots.
//
// Two degenerate control modes bound the experiment: baseline bypasses
// the codec entirely (upper bound), random broadcasts uncorrelated noise
// frequencies (lower bound). Silence exercises the decoder's
// zero-frequency convention.
package swarm
