// Package transport carries encoded waveforms between agents.
//
// Two wire carriers are provided. The file carrier persists each message
// as a standard 16-bit mono WAV container, one file per (round, sender);
// it keeps every transmission inspectable with ordinary audio tooling.
// The datagram carrier packs a message into a fixed-layout binary record
// and ships it over UDP with no handshake, no ordering, and no
// retransmission; losses surface as fetch timeouts, which callers treat
// as "no message this round."
//
// All carriers implement Bus, the in-process attachment point the swarm
// coordinator publishes to and fetches from. MemBus is the loopback
// implementation used when no real medium is wanted.
package transport
