package codec

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// StateSpanHz maps the unit state range onto the swarm band: state -1
// is 30 kHz, state +1 is 90 kHz, centered on the FM carrier.
const StateSpanHz = 30000.0

// StateToFrequency converts a unit state into its band frequency.
func StateToFrequency(state float64) float64 {
	return FMCarrier + StateSpanHz*clamp(state, -1, 1)
}

// StateFromFrequency converts a band frequency into a unit state,
// clamping out-of-band input.
func StateFromFrequency(freq float64) float64 {
	return clamp((freq-FMCarrier)/StateSpanHz, -1, 1)
}

// DecodeState demodulates the FM state channel.
//
// Procedure: recover the analytic signal (FFT-based Hilbert transform),
// unwrap its phase, differentiate to instantaneous frequency, then solve
// for the modulation amplitude by least-squares projection of
// (f_inst − f_c) onto the known modulator sin(2π f_m t). The edge regions
// (fade envelope plus a small guard) are excluded: there the envelope
// starves the analytic signal and the phase estimate is unreliable.
//
// Silent or too-short input returns 0 by convention.
func (c *Codec) DecodeState(w *Waveform) float64 {
	n := len(w.Samples)
	if n < c.minAnalysisSamples() {
		return 0
	}

	peak := 0.0
	for _, s := range w.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak < 1e-9 {
		return 0
	}

	analytic := analyticSignal(w.Samples)
	phase := unwrappedPhase(analytic)

	margin := c.fadeSamples() + n/50
	lo, hi := margin, n-1-margin
	if hi-lo < 2 {
		return 0
	}

	rate := float64(w.Rate)
	num, den := 0.0, 0.0
	for i := lo; i < hi; i++ {
		finst := (phase[i+1] - phase[i]) * rate / (2 * math.Pi)
		m := math.Sin(2 * math.Pi * FMModulator * float64(i) / rate)
		num += (finst - FMCarrier) * m
		den += m * m
	}
	if den == 0 {
		return 0
	}
	return clamp(num/(FMDeviation*den), -1, 1)
}

// analyticSignal computes the analytic signal of x: complex FFT, zero the
// negative-frequency half, double the positive half, inverse transform.
func analyticSignal(x []float64) []complex128 {
	n := len(x)
	seq := make([]complex128, n)
	for i, v := range x {
		seq[i] = complex(v, 0)
	}

	fft := fourier.NewCmplxFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	for i := 1; i <= (n-1)/2; i++ {
		coeffs[i] *= 2
	}
	for i := n/2 + 1; i < n; i++ {
		coeffs[i] = 0
	}

	out := fft.Sequence(nil, coeffs)
	scale := complex(1/float64(n), 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// unwrappedPhase extracts a continuous phase track from an analytic signal.
func unwrappedPhase(analytic []complex128) []float64 {
	phase := make([]float64, len(analytic))
	if len(analytic) == 0 {
		return phase
	}

	prev := math.Atan2(imag(analytic[0]), real(analytic[0]))
	phase[0] = prev
	for i := 1; i < len(analytic); i++ {
		cur := math.Atan2(imag(analytic[i]), real(analytic[i]))
		d := cur - prev
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		phase[i] = phase[i-1] + d
		prev = cur
	}
	return phase
}
