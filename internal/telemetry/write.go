package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hexwarp/swl/internal/swarm"
)

// RunInfo describes a run being recorded.
type RunInfo struct {
	ID       string // assigned if empty
	Mode     string
	Agents   int
	Rounds   int
	Seed     int64
	Coupling float64
}

// RunRecorder writes one run's rounds and transmissions. It satisfies
// the coordinator's Recorder contract; calls come from the round loop
// only.
type RunRecorder struct {
	store *Store
	runID string
}

var _ swarm.Recorder = (*RunRecorder)(nil)

// BeginRun registers a run and returns its recorder.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) (*RunRecorder, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, agents, round_budget, seed, coupling, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		info.ID,
		info.Mode,
		info.Agents,
		info.Rounds,
		info.Seed,
		info.Coupling,
		time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}
	return &RunRecorder{store: s, runID: info.ID}, nil
}

// RunID returns the run's identifier.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// RecordRound persists one round snapshot. Duplicate rounds are silently
// ignored so a resumed run never conflicts with its own history.
func (r *RunRecorder) RecordRound(ctx context.Context, snap swarm.Snapshot) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO rounds (run_id, round, mean_hz, stddev_hz, synced, total)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, round) DO NOTHING
	`,
		r.runID,
		snap.Round,
		snap.Mean,
		snap.StdDev,
		snap.Synced,
		snap.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}
	return nil
}

// RecordTransmission persists one published message's metadata.
func (r *RunRecorder) RecordTransmission(ctx context.Context, tx swarm.Transmission) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO transmissions (run_id, round, sender, concepts, state, samples)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, round, sender) DO NOTHING
	`,
		r.runID,
		tx.Round,
		tx.Sender,
		strings.Join(tx.Concepts, ","),
		tx.State,
		tx.Samples,
	)
	if err != nil {
		return fmt.Errorf("failed to record transmission: %w", err)
	}
	return nil
}

// Finish stamps the run complete with its convergence outcome.
func (r *RunRecorder) Finish(ctx context.Context, converged bool) error {
	_, err := r.store.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, converged = ? WHERE id = ?
	`,
		time.Now().Unix(),
		converged,
		r.runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}
