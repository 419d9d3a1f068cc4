package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/telemetry"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database      string
	Transmissions bool
}

// NewTraceCommand creates the trace command: inspect recorded runs.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Inspect recorded swarm runs",
		Long: `Without arguments, list all recorded runs. With a run id, print that
run's per-round snapshots; "latest" resolves to the most recent run.

Example:
  swl trace --db runs.db
  swl trace --db runs.db latest
  swl trace --db runs.db latest --transmissions`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to read (required)")
	cmd.Flags().BoolVar(&opts.Transmissions, "transmissions", false, "include per-message records")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions, args []string) error {
	store, err := telemetry.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer store.Close()

	ctx := contextOrBackground(cmd)
	out := newFormatter(cmd, opts.RootOptions)

	if len(args) == 0 {
		runs, err := store.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list runs", err)
		}
		for _, run := range runs {
			status := "running"
			if run.Finished {
				status = "unconverged"
				if run.Converged {
					status = "converged"
				}
			}
			out.Printf("%s  %-8s %3d agents  %3d rounds  seed %-6d %s  %s\n",
				run.ID, run.Mode, run.Agents, run.Rounds, run.Seed, status,
				time.Unix(run.StartedAt, 0).UTC().Format(time.RFC3339))
		}
		return out.Success(runs)
	}

	run, err := resolveRun(ctx, store, args[0])
	if err != nil {
		if errors.Is(err, telemetry.ErrNoRun) {
			return WrapExitError(ExitCommandError, "no such run", err)
		}
		return WrapExitError(ExitFailure, "failed to load run", err)
	}

	snaps, err := store.Rounds(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load rounds", err)
	}

	out.Printf("run %s: %s, %d agents, seed %d\n", run.ID, run.Mode, run.Agents, run.Seed)
	for _, snap := range snaps {
		out.Printf("round %3d: mean %9.1f Hz  stddev %9.1f Hz  %d/%d synced\n",
			snap.Round, snap.Mean, snap.StdDev, snap.Synced, snap.Total)
	}

	data := map[string]any{"run": run, "rounds": snaps}
	if opts.Transmissions {
		txs, err := store.Transmissions(ctx, run.ID)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to load transmissions", err)
		}
		for _, tx := range txs {
			out.Printf("round %3d: %s sent %d samples, state %+.3f, concepts [%s]\n",
				tx.Round, tx.Sender, tx.Samples, tx.State, strings.Join(tx.Concepts, " "))
		}
		data["transmissions"] = txs
	}
	return out.Success(data)
}

func resolveRun(ctx context.Context, store *telemetry.Store, id string) (telemetry.Run, error) {
	if id == "latest" {
		return store.LatestRun(ctx)
	}
	return store.Run(ctx, id)
}
