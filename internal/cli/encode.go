package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/transport"
	"github.com/hexwarp/swl/internal/vocab"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Out   string
	State float64
}

// NewEncodeCommand creates the encode command: concepts to a WAV file.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts, State: math.NaN()}

	cmd := &cobra.Command{
		Use:   "encode --out <file.wav> <concept>...",
		Short: "Encode a concept set (and optional FM state) into a WAV file",
		Long: `Encode concept symbols into a chord waveform and write it as 16-bit
mono PCM WAV. With --state, an FM carrier encoding the unit state is
mixed in.

Example:
  swl encode --out msg.wav help future question
  swl encode --out msg.wav --state 0.5 harmony`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output WAV path (required)")
	cmd.Flags().Float64Var(&opts.State, "state", math.NaN(), "FM state in [-1, 1]")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runEncode(cmd *cobra.Command, opts *EncodeOptions, concepts []string) error {
	c, table, err := loadCodec(codec.DefaultDuration)
	if err != nil {
		return err
	}

	normalized := make([]string, len(concepts))
	for i, symbol := range concepts {
		normalized[i] = vocab.Normalize(symbol)
		if _, ok := table.FrequencyOf(normalized[i]); !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown concept %q", symbol))
		}
	}

	msg := codec.NewMessage("cli", 0, normalized...)
	hasState := !math.IsNaN(opts.State)
	if hasState {
		if opts.State < -1 || opts.State > 1 {
			return NewExitError(ExitCommandError, fmt.Sprintf("state %g outside [-1, 1]", opts.State))
		}
		msg = msg.WithState(opts.State)
	}

	w := c.Encode(msg)
	if err := transport.WriteWAV(opts.Out, w); err != nil {
		return WrapExitError(ExitCommandError, "failed to write waveform", err)
	}

	out := newFormatter(cmd, opts.RootOptions)
	out.Printf("wrote %s: %d concepts, %d samples at %d Hz\n",
		opts.Out, len(normalized), len(w.Samples), w.Rate)
	return out.Success(map[string]any{
		"path":        opts.Out,
		"concepts":    normalized,
		"state":       msg.State,
		"has_state":   hasState,
		"samples":     len(w.Samples),
		"sample_rate": w.Rate,
	})
}
