package cli

import (
	"github.com/spf13/cobra"

	"github.com/hexwarp/swl/internal/codec"
)

// NewVocabCommand creates the vocab command: list the concept table.
func NewVocabCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "vocab",
		Short:         "List the concept vocabulary and its frequencies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := loadCodec(codec.DefaultDuration)
			if err != nil {
				return err
			}

			out := newFormatter(cmd, rootOpts)
			type entry struct {
				Symbol    string  `json:"symbol"`
				Frequency float64 `json:"frequency_hz"`
			}
			entries := make([]entry, 0, table.Len())
			for _, c := range table.Concepts() {
				entries = append(entries, entry{Symbol: c.Symbol, Frequency: c.Frequency})
				out.Printf("%-16s %8.0f Hz\n", c.Symbol, c.Frequency)
			}
			return out.Success(entries)
		},
	}
}
