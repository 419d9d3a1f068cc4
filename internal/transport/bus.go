package transport

import (
	"context"
	"sync"
	"time"
)

// pollInterval paces Fetch while it waits for a packet to appear.
const pollInterval = 2 * time.Millisecond

// Bus is the attachment point agents share within one swarm run. Publish
// makes a packet available under (round, sender); Fetch retrieves the
// most recent packet a sender published for a round, returning (nil, nil)
// when nothing arrives before the timeout. That outcome is the expected
// lossy-channel case, not an error.
type Bus interface {
	Publish(ctx context.Context, round uint64, pkt *Packet) error
	Fetch(ctx context.Context, round uint64, sender string, timeout time.Duration) (*Packet, error)
	Close() error
}

type slotKey struct {
	round  uint64
	sender string
}

// awaitPacket polls get until it yields a packet, the timeout elapses, or
// the context is cancelled.
func awaitPacket(ctx context.Context, timeout time.Duration, get func() *Packet) (*Packet, error) {
	deadline := time.Now().Add(timeout)
	for {
		if pkt := get(); pkt != nil {
			return pkt, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// MemBus is the loopback carrier: packets never leave the process.
type MemBus struct {
	mu    sync.Mutex
	slots map[slotKey]*Packet
}

func NewMemBus() *MemBus {
	return &MemBus{slots: make(map[slotKey]*Packet)}
}

func (b *MemBus) Publish(_ context.Context, round uint64, pkt *Packet) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[slotKey{round, pkt.Sender}] = pkt
	return nil
}

func (b *MemBus) Fetch(ctx context.Context, round uint64, sender string, timeout time.Duration) (*Packet, error) {
	return awaitPacket(ctx, timeout, func() *Packet {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.slots[slotKey{round, sender}]
	})
}

func (b *MemBus) Close() error { return nil }
