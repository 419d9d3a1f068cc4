package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirBus carries messages as WAV files in a shared directory, one file
// per (round, sender). Only the audio crosses the medium: receivers
// recover concepts and state from the spectrum, exactly as they would
// from a physical channel.
type DirBus struct {
	dir string
}

// NewDirBus creates the directory if needed and returns a bus over it.
func NewDirBus(dir string) (*DirBus, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transport directory: %w", err)
	}
	return &DirBus{dir: dir}, nil
}

func (b *DirBus) path(round uint64, sender string) string {
	return filepath.Join(b.dir, fmt.Sprintf("round_%06d_%s.wav", round, sender))
}

// Publish writes the packet's audio to its slot file. The write goes to a
// temp file first so a concurrent Fetch never observes a partial WAV.
func (b *DirBus) Publish(_ context.Context, round uint64, pkt *Packet) error {
	final := b.path(round, pkt.Sender)
	tmp := final + ".tmp"
	if err := WriteWAV(tmp, pkt.Waveform()); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to publish wav file: %w", err)
	}
	return nil
}

func (b *DirBus) Fetch(ctx context.Context, round uint64, sender string, timeout time.Duration) (*Packet, error) {
	path := b.path(round, sender)

	var readErr error
	pkt, err := awaitPacket(ctx, timeout, func() *Packet {
		if _, err := os.Stat(path); err != nil {
			return nil
		}
		w, err := ReadWAV(path)
		if err != nil {
			readErr = err
			return &Packet{}
		}
		return &Packet{
			Sender:     sender,
			Timestamp:  round,
			SampleRate: uint32(w.Rate),
			Samples:    w.PCM(),
		}
	})
	if err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	return pkt, nil
}

func (b *DirBus) Close() error { return nil }
