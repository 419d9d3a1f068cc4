package codec

import (
	"log/slog"
	"math"
)

// Encode materializes a Message into a Waveform.
//
// Concepts become a chord: one sinusoid per known symbol at amplitude 1/N,
// bounding the summed peak at 1.0. Unknown symbols are skipped (logged, not
// an error; the table is the sole authority). When the message carries
// state, an FM carrier is summed in and the chord is scaled down so the two
// coexist without clipping.
//
// Encoding is deterministic: the same Message yields bit-identical PCM.
func (c *Codec) Encode(msg *Message) *Waveform {
	n := c.numSamples()

	var freqs []float64
	for _, sym := range msg.Concepts {
		f, ok := c.table.FrequencyOf(sym)
		if !ok {
			slog.Warn("skipping unknown concept", "symbol", sym)
			continue
		}
		freqs = append(freqs, f)
	}

	samples := make([]float64, n)
	if !msg.HasState {
		c.addChord(samples, freqs, 1.0)
	} else {
		c.addFMCarrier(samples, msg.State, toneShare)
		c.addChord(samples, freqs, chordShare)
	}

	c.applyEnvelope(samples)
	return &Waveform{Rate: c.rate, Samples: samples}
}

// EncodeTone generates a single full-scale sinusoid at an arbitrary
// frequency. Used by the swarm's plain-tone mode, where the tone frequency
// itself is the payload and need not be a table entry.
func (c *Codec) EncodeTone(freq float64) *Waveform {
	n := c.numSamples()
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(c.rate)
		samples[i] = math.Sin(2 * math.Pi * freq * t)
	}
	c.applyEnvelope(samples)
	return &Waveform{Rate: c.rate, Samples: samples}
}

// EncodeMix sums a dominant state tone at an arbitrary frequency with a
// concept chord. The tone keeps the larger share so a dominant-peak decoder
// always reads the state frequency, while the chord stays above the
// relative threshold for small concept counts.
func (c *Codec) EncodeMix(freq float64, concepts []string) *Waveform {
	n := c.numSamples()

	var freqs []float64
	for _, sym := range concepts {
		f, ok := c.table.FrequencyOf(sym)
		if !ok {
			slog.Warn("skipping unknown concept", "symbol", sym)
			continue
		}
		freqs = append(freqs, f)
	}

	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(c.rate)
		samples[i] = toneShare * math.Sin(2*math.Pi*freq*t)
	}
	c.addChord(samples, freqs, chordShare)
	c.applyEnvelope(samples)
	return &Waveform{Rate: c.rate, Samples: samples}
}

// Silence returns an all-zero waveform of the configured duration.
func (c *Codec) Silence() *Waveform {
	return &Waveform{Rate: c.rate, Samples: make([]float64, c.numSamples())}
}

// addChord sums sinusoids at the given frequencies into dst, scaled so the
// whole chord contributes at most `share` peak amplitude.
func (c *Codec) addChord(dst []float64, freqs []float64, share float64) {
	if len(freqs) == 0 {
		return
	}
	amp := share / float64(len(freqs))
	for _, f := range freqs {
		for i := range dst {
			t := float64(i) / float64(c.rate)
			dst[i] += amp * math.Sin(2*math.Pi*f*t)
		}
	}
}

// addFMCarrier synthesizes the state carrier by phase accumulation:
// f(t) = f_c + Δf·state·sin(2π f_m t).
func (c *Codec) addFMCarrier(dst []float64, state, share float64) {
	state = clamp(state, -1, 1)
	phase := 0.0
	for i := range dst {
		t := float64(i) / float64(c.rate)
		finst := FMCarrier + FMDeviation*state*math.Sin(2*math.Pi*FMModulator*t)
		phase += 2 * math.Pi * finst / float64(c.rate)
		dst[i] += share * math.Sin(phase)
	}
}

// applyEnvelope applies a raised-cosine fade-in/out so the waveform edges
// do not smear energy across the spectrum.
func (c *Codec) applyEnvelope(samples []float64) {
	fade := c.fadeSamples()
	if fade == 0 {
		return
	}
	n := len(samples)
	for i := 0; i < fade; i++ {
		g := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(fade)))
		samples[i] *= g
		samples[n-1-i] *= g
	}
}
