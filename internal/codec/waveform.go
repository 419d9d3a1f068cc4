package codec

import (
	"math"
	"time"
)

// Waveform is a finite mono sample sequence plus its sample rate. Samples
// are float64 in [-1, 1]; quantization to the 16-bit wire format happens
// exactly once, in PCM.
type Waveform struct {
	Rate    int // Hz
	Samples []float64
}

// Duration returns the waveform length in time.
func (w *Waveform) Duration() time.Duration {
	if w.Rate == 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.Rate) * float64(time.Second))
}

// PCM quantizes to 16-bit signed samples. This is the only lossy step in
// the encode path. Rounding is half-away-from-zero (math.Round), which is
// platform-consistent, so the same Message always yields bit-identical PCM.
func (w *Waveform) PCM() []int16 {
	out := make([]int16, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = quantize(s)
	}
	return out
}

// FromPCM reconstructs a float waveform from 16-bit samples.
func FromPCM(rate int, pcm []int16) *Waveform {
	samples := make([]float64, len(pcm))
	for i, v := range pcm {
		samples[i] = float64(v) / 32767.0
	}
	return &Waveform{Rate: rate, Samples: samples}
}

func quantize(s float64) int16 {
	v := math.Round(s * 32767)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
