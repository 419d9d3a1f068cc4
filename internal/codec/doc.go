// Package codec implements the tone codec: the bidirectional mapping
// between symbolic Messages and sampled audio Waveforms.
//
// Encoding superposes one sinusoid per concept at amplitude 1/N (chord
// encoding), optionally sums in a frequency-modulated carrier for the
// continuous state channel, applies a short raised-cosine fade at both
// edges, and quantizes to 16-bit PCM exactly once, deterministically.
//
// Decoding is spectral and best-effort: a real FFT magnitude spectrum is
// peak-picked against the concept table inside a ±vocab.MatchTolerance
// window with a volume-invariant relative threshold. State recovery is an
// explicit, caller-selected operation (the transport mode knows whether the
// FM channel is present): the analytic signal is recovered by an FFT-based
// Hilbert transform, instantaneous frequency is extracted from its phase,
// and the known modulator is projected out by least squares.
//
// Decode conventions (documented, not inferred): a silent or noise-only
// waveform decodes to an empty concept set and state 0; a waveform shorter
// than one analysis window decodes to an empty result. Decoding never
// returns an error on malformed audio.
package codec
