package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/swarm"
	"github.com/hexwarp/swl/internal/telemetry"
	"github.com/hexwarp/swl/internal/transport"
)

// swarmDuration is the per-message waveform length during swarm runs;
// shorter than the default so a round of broadcasts fits a UDP datagram
// comfortably and rounds stay cheap.
const swarmDuration = 50 * time.Millisecond

// RunSwarmOptions holds flags for the run command.
type RunSwarmOptions struct {
	*RootOptions
	Mode      string
	Agents    int
	Rounds    int
	Seed      int64
	Coupling  float64
	Transport string
	Dir       string
	Database  string
	Plot      bool
}

// NewRunCommand creates the run command: execute a swarm synchronization
// experiment.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunSwarmOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a swarm synchronization experiment",
		Long: `Create a swarm of agents with random frequencies and run coupling
rounds until convergence or the round budget. The mode selects how
frequencies cross the medium; baseline and random are control
conditions.

Example:
  swl run --mode audio --agents 10 --rounds 20
  swl run --mode fm --transport udp --db runs.db --plot`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwarm(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "audio", "mode: "+strings.Join(swarm.ModeNames(), "|"))
	cmd.Flags().IntVar(&opts.Agents, "agents", swarm.DefaultAgents, "number of agents")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", swarm.DefaultRounds, "round budget")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "deterministic seed")
	cmd.Flags().Float64Var(&opts.Coupling, "coupling", swarm.DefaultCoupling, "coupling strength")
	cmd.Flags().StringVar(&opts.Transport, "transport", "mem", "carrier: mem|dir|udp")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "directory for the dir transport")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.Plot, "plot", false, "render an ASCII convergence chart")

	return cmd
}

func runSwarm(cmd *cobra.Command, opts *RunSwarmOptions) error {
	mode, err := swarm.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	c, _, err := loadCodec(swarmDuration)
	if err != nil {
		return err
	}

	bus, err := openBus(opts)
	if err != nil {
		return err
	}
	defer bus.Close()

	cfg := swarm.Config{
		Mode:     mode,
		Agents:   opts.Agents,
		Rounds:   opts.Rounds,
		Seed:     opts.Seed,
		Coupling: opts.Coupling,
		Codec:    c,
		Bus:      bus,
		Log:      slog.Default(),
	}

	var recorder *telemetry.RunRecorder
	if opts.Database != "" {
		store, err := telemetry.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer store.Close()

		recorder, err = store.BeginRun(cmd.Context(), telemetry.RunInfo{
			Mode:     mode.String(),
			Agents:   opts.Agents,
			Rounds:   opts.Rounds,
			Seed:     opts.Seed,
			Coupling: opts.Coupling,
		})
		if err != nil {
			return WrapExitError(ExitFailure, "failed to begin run", err)
		}
		cfg.Recorder = recorder
	}

	co, err := swarm.New(cfg)
	if err != nil {
		if errors.Is(err, swarm.ErrConfig) {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		return WrapExitError(ExitFailure, "failed to create swarm", err)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := co.Run(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "swarm run failed", err)
	}

	if recorder != nil {
		if err := recorder.Finish(cmd.Context(), res.Converged); err != nil {
			return WrapExitError(ExitFailure, "failed to finish run record", err)
		}
	}

	out := newFormatter(cmd, opts.RootOptions)
	printRunResult(out, res, opts.Plot)
	if recorder != nil {
		out.Printf("recorded as run %s\n", recorder.RunID())
	}
	return out.Success(map[string]any{
		"mode":      res.Mode.String(),
		"rounds":    res.Rounds,
		"converged": res.Converged,
		"mean_hz":   res.Final.Mean,
		"stddev_hz": res.Final.StdDev,
		"synced":    res.Final.Synced,
		"total":     res.Final.Total,
	})
}

func openBus(opts *RunSwarmOptions) (transport.Bus, error) {
	switch opts.Transport {
	case "mem":
		return transport.NewMemBus(), nil
	case "dir":
		if opts.Dir == "" {
			return nil, NewExitError(ExitCommandError, "the dir transport requires --dir")
		}
		bus, err := transport.NewDirBus(opts.Dir)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open transport directory", err)
		}
		return bus, nil
	case "udp":
		bus, err := transport.ListenUDP("127.0.0.1:0", "", slog.Default())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to bind udp transport", err)
		}
		return bus, nil
	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("unknown transport %q: must be mem, dir or udp", opts.Transport))
	}
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printRunResult(out *OutputFormatter, res *swarm.Result, plot bool) {
	if plot {
		printChart(out, res.History)
	}
	status := "did not converge"
	if res.Converged {
		status = "converged"
	}
	out.Printf("%s after %d rounds (%s): mean %.1f Hz, stddev %.1f Hz, %d/%d synced\n",
		status, res.Rounds, res.Mode, res.Final.Mean, res.Final.StdDev,
		res.Final.Synced, res.Final.Total)
}

// printChart renders the per-round spread as a bar chart scaled to the
// worst round.
func printChart(out *OutputFormatter, history []swarm.Snapshot) {
	const width = 50

	max := 0.0
	for _, snap := range history {
		if snap.StdDev > max {
			max = snap.StdDev
		}
	}
	if max == 0 {
		return
	}

	out.Printf("round  stddev_hz  synced\n")
	for _, snap := range history {
		bar := int(float64(width) * snap.StdDev / max)
		out.Printf("%5d %10.1f %3d/%-3d %s\n",
			snap.Round, snap.StdDev, snap.Synced, snap.Total,
			strings.Repeat("#", bar))
	}
}
