package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Stats counts traffic through a UDPBus. Dropped covers datagrams that
// failed to parse; receivers never surface those to callers.
type Stats struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
}

// UDPBus broadcasts packets as single datagrams on a UDP socket and keeps
// the most recent packet per (round, sender) for fetching. The packet's
// timestamp field carries the round number on the wire, so receivers can
// slot incoming traffic without any extra framing.
type UDPBus struct {
	conn *net.UDPConn
	dest *net.UDPAddr
	log  *slog.Logger

	mu    sync.Mutex
	slots map[slotKey]*Packet

	sent     atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64

	readerDone sync.WaitGroup
}

// ListenUDP binds a bus to addr ("127.0.0.1:0" for an ephemeral loopback
// port) and starts its background receiver. Publish sends to dest; pass
// the bus's own Addr as dest on the peer side, or a broadcast address.
func ListenUDP(addr, dest string, log *slog.Logger) (*UDPBus, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind udp socket: %w", err)
	}

	b := &UDPBus{
		conn:  conn,
		log:   log,
		slots: make(map[slotKey]*Packet),
	}
	if dest == "" {
		b.dest = conn.LocalAddr().(*net.UDPAddr)
	} else {
		b.dest, err = net.ResolveUDPAddr("udp", dest)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to resolve destination address: %w", err)
		}
	}

	b.readerDone.Add(1)
	go b.readLoop()
	return b, nil
}

// Addr reports the bound local address.
func (b *UDPBus) Addr() string {
	return b.conn.LocalAddr().String()
}

// Stats returns a snapshot of the traffic counters.
func (b *UDPBus) Stats() Stats {
	return Stats{
		Sent:     b.sent.Load(),
		Received: b.received.Load(),
		Dropped:  b.dropped.Load(),
	}
}

func (b *UDPBus) readLoop() {
	defer b.readerDone.Done()
	buf := make([]byte, MaxDatagram)
	for {
		n, _, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			// Closed socket ends the loop; anything else is logged and
			// treated the same as datagram loss.
			if !errors.Is(err, net.ErrClosed) {
				b.log.Warn("udp read failed", "error", err)
			}
			return
		}

		pkt, err := Unmarshal(buf[:n])
		if err != nil {
			b.dropped.Add(1)
			b.log.Warn("dropped malformed datagram", "bytes", n, "error", err)
			continue
		}

		b.mu.Lock()
		b.slots[slotKey{pkt.Timestamp, pkt.Sender}] = pkt
		b.mu.Unlock()
		b.received.Add(1)
	}
}

func (b *UDPBus) Publish(_ context.Context, round uint64, pkt *Packet) error {
	pkt.Timestamp = round
	data, err := pkt.Marshal()
	if err != nil {
		return err
	}
	if _, err := b.conn.WriteToUDP(data, b.dest); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}
	b.sent.Add(1)
	return nil
}

func (b *UDPBus) Fetch(ctx context.Context, round uint64, sender string, timeout time.Duration) (*Packet, error) {
	return awaitPacket(ctx, timeout, func() *Packet {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.slots[slotKey{round, sender}]
	})
}

// Close stops the receiver and releases the socket.
func (b *UDPBus) Close() error {
	err := b.conn.Close()
	b.readerDone.Wait()
	return err
}
