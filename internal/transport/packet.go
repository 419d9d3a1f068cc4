package transport

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"github.com/hexwarp/swl/internal/codec"
)

// Datagram layout, all multi-byte fields little-endian:
//
//	magic        4 bytes   "SWL1"
//	sender_id   16 bytes   zero-padded UTF-8
//	timestamp    8 bytes   uint64, monotonic (round number)
//	sample_rate  4 bytes   uint32 Hz
//	state        4 bytes   IEEE-754 float32, 0.0 when unused
//	concepts_len 4 bytes   uint32, byte count of the concepts field
//	concepts     variable  comma-joined concept names
//	samples      variable  int16 PCM, same format as the file carrier
const (
	packetMagic = "SWL1"
	senderLen   = 16
	headerLen   = 40

	// MaxDatagram is the largest payload a single UDP datagram can carry
	// (65535 minus the IP and UDP headers).
	MaxDatagram = 65507
)

var (
	ErrShortHeader = errors.New("transport: packet shorter than fixed header")
	ErrBadMagic    = errors.New("transport: bad packet magic")
	ErrTruncated   = errors.New("transport: truncated packet body")
	ErrTooLarge    = errors.New("transport: packet exceeds datagram limit")
)

// Packet is one complete wire message.
type Packet struct {
	Sender     string
	Timestamp  uint64
	SampleRate uint32
	State      float32
	Concepts   []string
	Samples    []int16
}

// NewPacket packs a waveform and its metadata for transmission. Senders
// longer than the fixed sender field are truncated on the wire.
func NewPacket(sender string, round uint64, w *codec.Waveform, concepts []string, state float64) *Packet {
	return &Packet{
		Sender:     sender,
		Timestamp:  round,
		SampleRate: uint32(w.Rate),
		State:      float32(state),
		Concepts:   concepts,
		Samples:    w.PCM(),
	}
}

// Waveform reconstructs the carried audio.
func (p *Packet) Waveform() *codec.Waveform {
	return codec.FromPCM(int(p.SampleRate), p.Samples)
}

// Marshal encodes the packet into a single datagram.
func (p *Packet) Marshal() ([]byte, error) {
	concepts := []byte(strings.Join(p.Concepts, ","))
	size := headerLen + len(concepts) + 2*len(p.Samples)
	if size > MaxDatagram {
		return nil, ErrTooLarge
	}

	buf := make([]byte, size)
	copy(buf[0:4], packetMagic)
	copy(buf[4:4+senderLen], p.Sender)
	binary.LittleEndian.PutUint64(buf[20:28], p.Timestamp)
	binary.LittleEndian.PutUint32(buf[28:32], p.SampleRate)
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(p.State))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(len(concepts)))
	copy(buf[headerLen:], concepts)

	off := headerLen + len(concepts)
	for _, s := range p.Samples {
		binary.LittleEndian.PutUint16(buf[off:], uint16(s))
		off += 2
	}
	return buf, nil
}

// Unmarshal decodes a datagram. The input slice is not retained.
func Unmarshal(data []byte) (*Packet, error) {
	if len(data) < headerLen {
		return nil, ErrShortHeader
	}
	if string(data[0:4]) != packetMagic {
		return nil, ErrBadMagic
	}

	conceptsLen := int(binary.LittleEndian.Uint32(data[36:40]))
	if headerLen+conceptsLen > len(data) {
		return nil, ErrTruncated
	}

	var concepts []string
	if conceptsLen > 0 {
		concepts = strings.Split(string(data[headerLen:headerLen+conceptsLen]), ",")
	}

	rest := data[headerLen+conceptsLen:]
	if len(rest)%2 != 0 {
		return nil, ErrTruncated
	}
	samples := make([]int16, len(rest)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(rest[2*i:]))
	}

	return &Packet{
		Sender:     strings.TrimRight(string(data[4:4+senderLen]), "\x00"),
		Timestamp:  binary.LittleEndian.Uint64(data[20:28]),
		SampleRate: binary.LittleEndian.Uint32(data[28:32]),
		State:      math.Float32frombits(binary.LittleEndian.Uint32(data[32:36])),
		Concepts:   concepts,
		Samples:    samples,
	}, nil
}
