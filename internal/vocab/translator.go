package vocab

// TextTranslator is the collaborator contract for the excluded
// natural-language layer. Implementations turn free text into table symbols;
// the core never implements or semantically validates a translator, it only
// consumes the returned symbols. Unknown symbols are dropped at the codec
// boundary.
type TextTranslator interface {
	Concepts(text string) []string
}
