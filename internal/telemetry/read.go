package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hexwarp/swl/internal/swarm"
)

// ErrNoRun is returned when the requested run does not exist.
var ErrNoRun = errors.New("telemetry: no such run")

// Run is one recorded swarm run.
type Run struct {
	ID       string
	Mode     string
	Agents   int
	Rounds   int
	Seed     int64
	Coupling float64

	StartedAt  int64
	FinishedAt int64 // 0 while in progress
	Converged  bool  // meaningful once finished
	Finished   bool
}

// Runs lists recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, agents, round_budget, seed, coupling, started_at, finished_at, converged
		FROM runs
		ORDER BY started_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Run fetches a single run by id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, agents, round_budget, seed, coupling, started_at, finished_at, converged
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNoRun, id)
	}
	return run, err
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, agents, round_budget, seed, coupling, started_at, finished_at, converged
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	return run, err
}

// Rounds returns a run's snapshots in round order.
func (s *Store) Rounds(ctx context.Context, runID string) ([]swarm.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, mean_hz, stddev_hz, synced, total
		FROM rounds
		WHERE run_id = ?
		ORDER BY round ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var snaps []swarm.Snapshot
	for rows.Next() {
		var snap swarm.Snapshot
		if err := rows.Scan(&snap.Round, &snap.Mean, &snap.StdDev, &snap.Synced, &snap.Total); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}
	return snaps, nil
}

// Transmissions returns a run's transmissions ordered by round then
// sender.
func (s *Store) Transmissions(ctx context.Context, runID string) ([]swarm.Transmission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, sender, concepts, state, samples
		FROM transmissions
		WHERE run_id = ?
		ORDER BY round ASC, sender ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transmissions: %w", err)
	}
	defer rows.Close()

	var txs []swarm.Transmission
	for rows.Next() {
		var tx swarm.Transmission
		var concepts string
		if err := rows.Scan(&tx.Round, &tx.Sender, &concepts, &tx.State, &tx.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan transmission: %w", err)
		}
		if concepts != "" {
			tx.Concepts = strings.Split(concepts, ",")
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transmissions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var finishedAt sql.NullInt64
	var converged sql.NullBool
	err := row.Scan(
		&run.ID,
		&run.Mode,
		&run.Agents,
		&run.Rounds,
		&run.Seed,
		&run.Coupling,
		&run.StartedAt,
		&finishedAt,
		&converged,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Finished = finishedAt.Valid
	run.FinishedAt = finishedAt.Int64
	run.Converged = converged.Bool
	return run, nil
}
