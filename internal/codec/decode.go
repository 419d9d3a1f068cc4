package codec

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/hexwarp/swl/internal/vocab"
)

// Decode recovers the concept set from a waveform. State is not recovered
// here: the FM channel is demodulated only on request (DecodeState), because
// only the transport mode knows whether a state carrier is present.
//
// Best-effort by contract: silent, noisy or too-short input yields an empty
// concept set, never an error.
func (c *Codec) Decode(w *Waveform) *Message {
	return &Message{Concepts: c.DecodeConcepts(w)}
}

// DecodeConcepts peak-picks the magnitude spectrum against the concept
// table. A concept is present when a peak within ±vocab.MatchTolerance of
// its frequency reaches RelativeThreshold of the spectrum maximum. The
// result is ordered by ascending table frequency.
func (c *Codec) DecodeConcepts(w *Waveform) []string {
	mags, binHz := c.magnitudeSpectrum(w)
	if mags == nil {
		return nil
	}

	max := 0.0
	for _, m := range mags {
		if m > max {
			max = m
		}
	}
	if max == 0 {
		return nil
	}

	var detected []string
	for _, concept := range c.table.Concepts() {
		peak := windowPeak(mags, binHz, concept.Frequency, vocab.MatchTolerance)
		if peak > RelativeThreshold*max {
			detected = append(detected, concept.Symbol)
		}
	}
	return detected
}

// DominantFrequency returns the frequency of the strongest spectral peak,
// or 0 for silent or too-short input (the documented zero convention).
// Out-of-band peaks are reported as-is; interpretation is the caller's.
func (c *Codec) DominantFrequency(w *Waveform) float64 {
	mags, binHz := c.magnitudeSpectrum(w)
	if mags == nil {
		return 0
	}

	best, bestIdx := 0.0, 0
	for i, m := range mags {
		if m > best {
			best, bestIdx = m, i
		}
	}
	if best == 0 {
		return 0
	}
	return float64(bestIdx) * binHz
}

// magnitudeSpectrum computes the real-FFT magnitude spectrum. Returns
// (nil, 0) when the waveform is shorter than one analysis window.
func (c *Codec) magnitudeSpectrum(w *Waveform) ([]float64, float64) {
	n := len(w.Samples)
	if n < c.minAnalysisSamples() {
		return nil, 0
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, w.Samples)

	mags := make([]float64, len(coeffs))
	for i, co := range coeffs {
		mags[i] = cmplx.Abs(co)
	}
	return mags, float64(w.Rate) / float64(n)
}

// windowPeak returns the maximum magnitude within ±tol Hz of freq.
func windowPeak(mags []float64, binHz, freq, tol float64) float64 {
	lo := int((freq - tol) / binHz)
	hi := int((freq+tol)/binHz) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > len(mags) {
		hi = len(mags)
	}
	peak := 0.0
	for i := lo; i < hi; i++ {
		if mags[i] > peak {
			peak = mags[i]
		}
	}
	return peak
}
