package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/vocab"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the swl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "swl",
		Short: "SWL - sine wave language",
		Long: `Concepts as ultrasonic sinusoids: encode concept sets into chords,
demodulate FM state carriers, and synchronize agent swarms over the
audio channel.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewVocabCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newFormatter binds the formatter to the command's stdout so tests can
// capture output.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// loadCodec builds the codec over the embedded vocabulary. A broken
// table (frequency collision) is a configuration error.
func loadCodec(duration time.Duration) (*codec.Codec, *vocab.Table, error) {
	table, err := vocab.Load()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load vocabulary", err)
	}
	return codec.New(table, codec.WithDuration(duration)), table, nil
}
