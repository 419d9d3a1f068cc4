package swarm

import (
	"fmt"

	"github.com/google/uuid"
)

// Role marks an agent's behavior within the swarm.
type Role int

const (
	// RoleFollower applies the standard coupling update. The default.
	RoleFollower Role = iota
	// RoleCoordinator is a marker for the agent elected to report swarm
	// state upstream; its coupling behavior is identical to a follower.
	RoleCoordinator
	// RoleObserver broadcasts every round but never updates its own
	// frequency.
	RoleObserver
	// RoleDissenter inverts the coupling pull, pushing away from its
	// neighborhood mean.
	RoleDissenter
)

var roleNames = map[Role]string{
	RoleFollower:    "follower",
	RoleCoordinator: "coordinator",
	RoleObserver:    "observer",
	RoleDissenter:   "dissenter",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Phase tracks where an agent sits inside the current round. It cycles
// IDLE -> ENCODING -> TRANSMITTED -> IDLE; there is no terminal phase.
// Baseline mode skips the broadcast half of the round, so its agents
// stay idle for the whole run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEncoding
	PhaseTransmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseEncoding:
		return "encoding"
	case PhaseTransmitted:
		return "transmitted"
	default:
		return "idle"
	}
}

// historyLimit bounds per-agent frequency history. Old entries are
// discarded once the window is full.
const historyLimit = 256

// Agent is one participant. All fields are owned by the coordinator's
// round loop: within a round an agent mutates only itself and reads only
// the previous round's snapshot, so no locking is needed.
type Agent struct {
	// UID identifies the agent across runs; ID is the stable wire name
	// used to address transport slots.
	UID   uuid.UUID
	ID    string
	Index int
	Role  Role
	Phase Phase

	Frequency float64

	history []float64
}

func newAgent(index int, freq float64, role Role) *Agent {
	a := &Agent{
		UID:       uuid.New(),
		ID:        fmt.Sprintf("agent-%d", index),
		Index:     index,
		Role:      role,
		Frequency: freq,
	}
	a.record()
	return a
}

// Step applies one coupling update from the decoded neighbor
// frequencies. An empty neighborhood (every message lost or timed out)
// leaves the frequency unchanged; observers never move.
func (a *Agent) Step(neighbors []float64, coupling float64) {
	if len(neighbors) == 0 || a.Role == RoleObserver {
		a.record()
		return
	}

	mean := 0.0
	for _, f := range neighbors {
		mean += f
	}
	mean /= float64(len(neighbors))

	pull := coupling * (mean - a.Frequency)
	if a.Role == RoleDissenter {
		pull = -pull
	}
	a.Frequency += pull
	a.record()
}

// Synced reports whether the agent sits within threshold of the swarm
// mean for this round.
func (a *Agent) Synced(mean, threshold float64) bool {
	d := a.Frequency - mean
	if d < 0 {
		d = -d
	}
	return d < threshold
}

func (a *Agent) record() {
	if len(a.history) == historyLimit {
		copy(a.history, a.history[1:])
		a.history = a.history[:historyLimit-1]
	}
	a.history = append(a.history, a.Frequency)
}

// History returns the recorded frequency trajectory, oldest first.
func (a *Agent) History() []float64 {
	out := make([]float64, len(a.history))
	copy(out, a.history)
	return out
}
