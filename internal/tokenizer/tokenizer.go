// Package tokenizer defines the term-segmentation contract used at both
// build and query time, plus the bundled implementations.
//
// Tokenization must be identical at build and query time: the index never
// re-checks stop-word membership, and the query cache treats a tokenizer
// as a pure function of its input.
package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Tokenizer produces an ordered sequence of terms for a sentence.
// Implementations filter empty, whitespace-only, and stop-word terms.
type Tokenizer interface {
	Cut(sentence string) []string
}

// LoadStopWords reads one stop word per line from path. A missing file
// yields an empty set and an error the caller may log and ignore.
func LoadStopWords(path string) (map[string]struct{}, error) {
	stop := make(map[string]struct{})
	f, err := os.Open(path)
	if err != nil {
		return stop, fmt.Errorf("open stop words: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		word := strings.TrimSpace(sc.Text())
		if word != "" {
			stop[word] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return stop, fmt.Errorf("read stop words: %w", err)
	}
	return stop, nil
}

// filterTerms applies the shared term filter: drop empty and
// whitespace-only tokens and anything in the stop-word set.
func filterTerms(words []string, stop map[string]struct{}) []string {
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || strings.TrimSpace(w) == "" {
			continue
		}
		if _, ok := stop[w]; ok {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}
