package vocab

import (
	_ "embed"
	"fmt"
	"math"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed vocabulary.cue
var vocabularyCUE string

// MatchTolerance is the decoder's frequency matching window in Hz. A concept
// is recognized when a spectral peak falls within ±MatchTolerance of its
// table frequency. The table loader rejects any vocabulary whose minimum
// separation is not strictly greater than twice this value.
const MatchTolerance = 500.0

// Concept is one immutable symbol → carrier frequency pair.
type Concept struct {
	Symbol    string
	Frequency float64 // Hz
}

// Table is the compiled, immutable concept table.
//
// Construct with Load. Safe for concurrent use.
type Table struct {
	bySymbol map[string]float64
	concepts []Concept // sorted by ascending frequency
}

// Load compiles the embedded CUE vocabulary into a Table.
//
// Fails fast (configuration error, fatal at startup) when:
//   - the CUE source does not evaluate (band violation, conflicting entries)
//   - any two symbols sit within 2×MatchTolerance of each other
func Load() (*Table, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(vocabularyCUE, cue.Filename("vocabulary.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile vocabulary: %w", err)
	}

	voc := v.LookupPath(cue.ParsePath("vocabulary"))
	if err := voc.Err(); err != nil {
		return nil, fmt.Errorf("lookup vocabulary: %w", err)
	}

	iter, err := voc.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate vocabulary: %w", err)
	}

	t := &Table{bySymbol: make(map[string]float64)}
	for iter.Next() {
		symbol := Normalize(iter.Selector().String())
		freq, err := iter.Value().Float64()
		if err != nil {
			return nil, fmt.Errorf("vocabulary entry %q: %w", symbol, err)
		}
		if _, dup := t.bySymbol[symbol]; dup {
			return nil, fmt.Errorf("vocabulary entry %q: duplicate symbol after normalization", symbol)
		}
		t.bySymbol[symbol] = freq
		t.concepts = append(t.concepts, Concept{Symbol: symbol, Frequency: freq})
	}
	if len(t.concepts) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	sort.Slice(t.concepts, func(i, j int) bool {
		return t.concepts[i].Frequency < t.concepts[j].Frequency
	})

	if err := t.checkSeparation(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkSeparation enforces the peak-picking invariant: every pair of
// distinct table frequencies must be separated by strictly more than twice
// the matching tolerance.
func (t *Table) checkSeparation() error {
	const minSep = 2 * MatchTolerance
	for i := 1; i < len(t.concepts); i++ {
		prev, cur := t.concepts[i-1], t.concepts[i]
		if cur.Frequency-prev.Frequency <= minSep {
			return fmt.Errorf("vocabulary: %q (%.0f Hz) and %q (%.0f Hz) closer than minimum separation %.0f Hz",
				prev.Symbol, prev.Frequency, cur.Symbol, cur.Frequency, minSep)
		}
	}
	return nil
}

// FrequencyOf returns the carrier frequency for a symbol. The symbol is
// normalized before lookup.
func (t *Table) FrequencyOf(symbol string) (float64, bool) {
	f, ok := t.bySymbol[Normalize(symbol)]
	return f, ok
}

// NearestSymbol returns the symbol whose frequency is closest to freq,
// provided the distance is within tol Hz. Returns ("", false) when no
// table entry qualifies; out-of-band frequencies are not an error.
func (t *Table) NearestSymbol(freq, tol float64) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for _, c := range t.concepts {
		d := math.Abs(c.Frequency - freq)
		if d < bestDist {
			best, bestDist = c.Symbol, d
		}
	}
	if bestDist > tol {
		return "", false
	}
	return best, true
}

// Concepts returns the table entries in ascending frequency order.
// The returned slice is a copy.
func (t *Table) Concepts() []Concept {
	out := make([]Concept, len(t.concepts))
	copy(out, t.concepts)
	return out
}

// Symbols returns every symbol in ascending frequency order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.concepts))
	for i, c := range t.concepts {
		out[i] = c.Symbol
	}
	return out
}

// Band returns the lowest and highest table frequencies.
func (t *Table) Band() (lo, hi float64) {
	return t.concepts[0].Frequency, t.concepts[len(t.concepts)-1].Frequency
}

// MinSeparation returns the smallest gap between adjacent table frequencies.
func (t *Table) MinSeparation() float64 {
	sep := math.Inf(1)
	for i := 1; i < len(t.concepts); i++ {
		if d := t.concepts[i].Frequency - t.concepts[i-1].Frequency; d < sep {
			sep = d
		}
	}
	return sep
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.concepts)
}
