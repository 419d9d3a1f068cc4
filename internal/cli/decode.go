package cli

import (
	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/transport"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	WithState bool
}

// NewDecodeCommand creates the decode command: WAV file to concepts.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <file.wav>",
		Short: "Decode a WAV file into concepts and the dominant frequency",
		Long: `Peak-pick the spectrum of a WAV file against the concept table.
Decode is best-effort: silence or noise yields an empty concept set.
With --state, the FM state channel is demodulated as well.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.WithState, "state", false, "also demodulate the FM state channel")

	return cmd
}

func runDecode(cmd *cobra.Command, opts *DecodeOptions, path string) error {
	c, _, err := loadCodec(codec.DefaultDuration)
	if err != nil {
		return err
	}

	w, err := transport.ReadWAV(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read waveform", err)
	}

	concepts := c.DecodeConcepts(w)
	dominant := c.DominantFrequency(w)

	data := map[string]any{
		"concepts":    concepts,
		"dominant_hz": dominant,
	}

	out := newFormatter(cmd, opts.RootOptions)
	if len(concepts) == 0 {
		out.Printf("concepts: (none)\n")
	} else {
		out.Printf("concepts:")
		for _, symbol := range concepts {
			out.Printf(" %s", symbol)
		}
		out.Printf("\n")
	}
	out.Printf("dominant: %.0f Hz\n", dominant)

	if opts.WithState {
		state := c.DecodeState(w)
		data["state"] = state
		out.Printf("state:    %+.3f\n", state)
	}
	return out.Success(data)
}
