package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/swarm"
	"github.com/hexwarp/swl/internal/vocab"
)

// roundDuration keeps scenario rounds short; the band still lands on
// exact FFT bins at this length.
const roundDuration = 50 * time.Millisecond

// Result is the outcome of one scenario execution.
type Result struct {
	Scenario *Scenario
	Run      *swarm.Result

	// Failures lists every violated expectation; empty means passed.
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario against an in-memory bus and checks its
// expectations. A run error (not an expectation failure) is returned as
// error.
func Run(ctx context.Context, scenario *Scenario, log *slog.Logger) (*Result, error) {
	table, err := vocab.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	mode, err := swarm.ParseMode(scenario.Mode)
	if err != nil {
		return nil, err
	}

	co, err := swarm.New(swarm.Config{
		Mode:     mode,
		Agents:   scenario.Agents,
		Rounds:   scenario.Rounds,
		Seed:     scenario.Seed,
		Coupling: scenario.Coupling,
		Codec:    codec.New(table, codec.WithDuration(roundDuration)),
		Log:      log,
	})
	if err != nil {
		return nil, err
	}

	run, err := co.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s failed to run: %w", scenario.Name, err)
	}

	return &Result{
		Scenario: scenario,
		Run:      run,
		Failures: check(scenario.Expect, run),
	}, nil
}

func check(expect Expectations, run *swarm.Result) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	final := run.Final
	if expect.Converged != nil && run.Converged != *expect.Converged {
		fail("converged = %v, want %v", run.Converged, *expect.Converged)
	}
	if expect.MinSyncedRatio != nil && final.Ratio() < *expect.MinSyncedRatio {
		fail("synced ratio %.2f below minimum %.2f", final.Ratio(), *expect.MinSyncedRatio)
	}
	if expect.MaxSyncedRatio != nil && final.Ratio() >= *expect.MaxSyncedRatio {
		fail("synced ratio %.2f not below maximum %.2f", final.Ratio(), *expect.MaxSyncedRatio)
	}
	if expect.MaxMeanHz != nil && final.Mean >= *expect.MaxMeanHz {
		fail("mean %.1f Hz not below maximum %.1f Hz", final.Mean, *expect.MaxMeanHz)
	}
	if expect.MinStdDevHz != nil && final.StdDev < *expect.MinStdDevHz {
		fail("stddev %.1f Hz below minimum %.1f Hz", final.StdDev, *expect.MinStdDevHz)
	}
	if expect.MaxStdDevHz != nil && final.StdDev >= *expect.MaxStdDevHz {
		fail("stddev %.1f Hz not below maximum %.1f Hz", final.StdDev, *expect.MaxStdDevHz)
	}
	return failures
}
