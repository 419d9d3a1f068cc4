package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/harness"
)

// NewTestCommand creates the test command: run scenario files.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run convergence scenarios and report pass/fail",
		Long: `Execute YAML scenario files and check their expectations against the
resulting runs. Exit code 1 if any scenario fails, 2 if a scenario file
is invalid.

Example:
  swl test scenarios/baseline_sync.yaml scenarios/random_noise.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, rootOpts, args)
		},
	}
}

func runScenarios(cmd *cobra.Command, rootOpts *RootOptions, paths []string) error {
	out := newFormatter(cmd, rootOpts)

	type report struct {
		Name     string   `json:"name"`
		Path     string   `json:"path"`
		Passed   bool     `json:"passed"`
		Failures []string `json:"failures,omitempty"`
	}

	reports := make([]report, 0, len(paths))
	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}

		res, err := harness.Run(contextOrBackground(cmd), scenario, slog.Default())
		if err != nil {
			return WrapExitError(ExitFailure, "scenario execution failed", err)
		}

		reports = append(reports, report{
			Name:     scenario.Name,
			Path:     path,
			Passed:   res.Passed(),
			Failures: res.Failures,
		})
		if res.Passed() {
			out.Printf("PASS %s\n", scenario.Name)
		} else {
			failed++
			out.Printf("FAIL %s\n", scenario.Name)
			for _, failure := range res.Failures {
				out.Printf("     %s\n", failure)
			}
		}
	}

	if err := out.Success(reports); err != nil {
		return err
	}
	out.Printf("%d/%d scenarios passed\n", len(reports)-failed, len(reports))
	if failed > 0 {
		return NewExitError(ExitFailure, "scenarios failed")
	}
	return nil
}
