package vocab

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a symbol for table lookup: NFC normalization,
// whitespace trim, lower case. Two symbols that normalize to the same string
// are the same concept.
func Normalize(symbol string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(symbol)))
}
