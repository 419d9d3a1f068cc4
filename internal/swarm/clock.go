package swarm

import "sync/atomic"

// Clock is the monotonic round counter. Every round is stamped with a
// strictly increasing number from this clock, so transport slots and
// telemetry rows order identically across runs and replays.
//
// Thread-safety: safe for concurrent use, though the coordinator's
// single-driver design means only one goroutine calls Next().
type Clock struct {
	round atomic.Uint64
}

// NewClock creates a clock starting at 0; the first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific round, for
// continuing a recorded run.
func NewClockAt(start uint64) *Clock {
	c := &Clock{}
	c.round.Store(start)
	return c
}

// Next advances the clock and returns the new round number.
func (c *Clock) Next() uint64 {
	return c.round.Add(1)
}

// Current returns the latest round number without advancing.
func (c *Clock) Current() uint64 {
	return c.round.Load()
}
