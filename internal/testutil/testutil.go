// Package testutil provides deterministic helpers shared by tests:
// seeded random sources and signal generators. Tests must never consume
// global randomness — every run of the suite sees identical inputs.
package testutil

import (
	"math"
	"math/rand"
)

// RNG returns a deterministic random source for a test.
func RNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Sine synthesizes n samples of a sinusoid at freq Hz.
func Sine(freq float64, rate, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(rate)
		out[i] = amp * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

// WhiteNoise returns n samples of uniform noise in [-amp, amp].
func WhiteNoise(seed int64, n int, amp float64) []float64 {
	rng := RNG(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * (2*rng.Float64() - 1)
	}
	return out
}
