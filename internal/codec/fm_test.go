package codec

import (
	"math/cmplx"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeState_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	for _, state := range []float64{-1.0, -0.5, 0.0, 0.5, 1.0} {
		msg := NewMessage("test", 0).WithState(state)
		w := c.Encode(msg)
		got := c.DecodeState(w)
		assert.InDelta(t, state, got, 0.05, "state %v", state)
	}
}

func TestDecodeState_RoundTrip_ShortDuration(t *testing.T) {
	c := newTestCodec(t, WithDuration(50*time.Millisecond))

	for _, state := range []float64{-0.8, 0.3, 0.9} {
		w := c.Encode(NewMessage("test", 0).WithState(state))
		assert.InDelta(t, state, c.DecodeState(w), 0.05, "state %v", state)
	}
}

func TestDecodeState_WithChord(t *testing.T) {
	c := newTestCodec(t)

	msg := NewMessage("test", 0, "exists", "learn").WithState(0.5)
	w := c.Encode(msg)

	// The chord perturbs the instantaneous-frequency track, so the state
	// tolerance is looser than for a clean carrier.
	assert.InDelta(t, 0.5, c.DecodeState(w), 0.15)

	// Concept recovery alongside an FM carrier is best-effort: the carrier's
	// sidebands can cross the threshold near the FM band, so the encoded
	// concepts must be present but extras are tolerated.
	assert.Subset(t, c.DecodeConcepts(w), []string{"exists", "learn"})
}

func TestDecodeState_ClampsToUnitRange(t *testing.T) {
	c := newTestCodec(t)

	// Encoding already clamps; decoding clamps again so numerical overshoot
	// can never leave the documented range.
	w := c.Encode(NewMessage("test", 0).WithState(1.0))
	got := c.DecodeState(w)
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.9)
}

func TestDecodeState_ThroughPCM(t *testing.T) {
	c := newTestCodec(t)

	w := c.Encode(NewMessage("test", 0).WithState(-0.25))
	restored := FromPCM(w.Rate, w.PCM())
	assert.InDelta(t, -0.25, c.DecodeState(restored), 0.05)
}

func TestAnalyticSignal_EnvelopeOfTone(t *testing.T) {
	c := newTestCodec(t)

	w := c.EncodeTone(50000)
	analytic := analyticSignal(w.Samples)

	// Away from the faded edges the analytic envelope of a unit sinusoid
	// stays near 1.
	n := len(analytic)
	for i := n / 4; i < 3*n/4; i += 997 {
		assert.InDelta(t, 1.0, cmplx.Abs(analytic[i]), 0.05)
	}
}
