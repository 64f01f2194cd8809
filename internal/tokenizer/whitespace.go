package tokenizer

import "strings"

// Whitespace splits on Unicode whitespace and applies the shared term
// filter. It serves plain-text corpora whose terms are already
// space-delimited, and tests that need a dictionary-free tokenizer.
type Whitespace struct {
	stop map[string]struct{}
}

// NewWhitespace returns a whitespace tokenizer with the given stop-word
// set (nil for none).
func NewWhitespace(stop map[string]struct{}) *Whitespace {
	if stop == nil {
		stop = make(map[string]struct{})
	}
	return &Whitespace{stop: stop}
}

// Cut implements Tokenizer.
func (t *Whitespace) Cut(sentence string) []string {
	return filterTerms(strings.Fields(sentence), t.stop)
}
