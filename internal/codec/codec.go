package codec

import (
	"time"

	"github.com/hexwarp/swl/internal/vocab"
)

// Signal constants. The carrier band and FM parameters come from the wire
// protocol and must match on both sides of a link.
const (
	// DefaultSampleRate supports the 25–90 kHz carrier band under Nyquist.
	DefaultSampleRate = 192000

	// DefaultDuration is the per-message waveform length.
	DefaultDuration = 100 * time.Millisecond

	// RelativeThreshold is the volume-invariant peak acceptance level: a
	// concept peak must reach this fraction of the spectrum's maximum.
	RelativeThreshold = 0.1

	// FadeDuration is the raised-cosine edge envelope applied to every
	// encoded waveform to suppress spectral leakage.
	FadeDuration = 3 * time.Millisecond

	// FM state channel parameters.
	FMCarrier   = 60000.0 // Hz
	FMModulator = 500.0   // Hz
	FMDeviation = 8000.0  // Hz peak deviation at |state| == 1

	// Mixing shares when a state carrier coexists with a concept chord.
	toneShare  = 0.7
	chordShare = 0.3
)

// Codec converts Messages to Waveforms and back against a fixed concept
// table. Safe for concurrent use: all state is immutable after New.
type Codec struct {
	table    *vocab.Table
	rate     int
	duration time.Duration
}

// Option configures a Codec.
type Option func(*Codec)

// WithSampleRate overrides the sample rate.
func WithSampleRate(rate int) Option {
	return func(c *Codec) { c.rate = rate }
}

// WithDuration overrides the per-message duration. Swarm rounds use 50 ms
// to halve the per-round signal processing cost.
func WithDuration(d time.Duration) Option {
	return func(c *Codec) { c.duration = d }
}

// New builds a codec over the given table.
func New(table *vocab.Table, opts ...Option) *Codec {
	c := &Codec{
		table:    table,
		rate:     DefaultSampleRate,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SampleRate returns the codec's sample rate in Hz.
func (c *Codec) SampleRate() int { return c.rate }

// Duration returns the per-message waveform duration.
func (c *Codec) Duration() time.Duration { return c.duration }

// Table returns the concept table the codec decodes against.
func (c *Codec) Table() *vocab.Table { return c.table }

// numSamples is the per-message sample count.
func (c *Codec) numSamples() int {
	return int(float64(c.rate) * c.duration.Seconds())
}

// fadeSamples is the length of one edge envelope ramp.
func (c *Codec) fadeSamples() int {
	n := int(float64(c.rate) * FadeDuration.Seconds())
	if n*2 > c.numSamples() {
		n = c.numSamples() / 2
	}
	return n
}

// minAnalysisSamples is the shortest waveform the decoder will analyze.
// Below this the FFT bin spacing exceeds the matching tolerance and
// peak-picking is meaningless; such input decodes to an empty result.
func (c *Codec) minAnalysisSamples() int {
	return int(float64(c.rate)/vocab.MatchTolerance) + 1
}
