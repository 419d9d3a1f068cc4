package codec

import (
	"github.com/google/uuid"
)

// Message is one transient communication event. It is immutable after
// construction; encoding is a pure function of Concepts, State and HasState.
// ID and Sender ride along for transport metadata and never influence the
// waveform.
type Message struct {
	ID        uuid.UUID
	Sender    string
	Timestamp int64 // monotonic sequence from the coordinator's round clock
	Concepts  []string
	State     float64 // ∈ [-1, 1], meaningful only when HasState
	HasState  bool
}

// NewMessage builds a concept-only message.
func NewMessage(sender string, timestamp int64, concepts ...string) *Message {
	return &Message{
		ID:        uuid.New(),
		Sender:    sender,
		Timestamp: timestamp,
		Concepts:  concepts,
	}
}

// WithState returns a copy carrying the continuous state channel.
// The value is clamped to [-1, 1].
func (m *Message) WithState(state float64) *Message {
	out := *m
	out.State = clamp(state, -1, 1)
	out.HasState = true
	return &out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
