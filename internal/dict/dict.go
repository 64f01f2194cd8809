// Package dict aggregates corpus term frequencies into the suggestion
// dictionary, maintains the per-character word index behind candidate
// lookup, and ranks fuzzy keyword recommendations by edit distance.
package dict

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/textutil"
	"github.com/wrensearch/wren/internal/tokenizer"
)

// Dictionary maps words to corpus-wide frequencies, with a character
// index (char -> set of words containing it) built alongside. Immutable
// once built or loaded.
type Dictionary struct {
	words     map[string]int
	charIndex map[string]map[string]struct{}
	logger    *slog.Logger
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		words:     make(map[string]int),
		charIndex: make(map[string]map[string]struct{}),
		logger:    slog.Default().With("component", "dict"),
	}
}

// Build aggregates term frequencies across docs and rebuilds the
// character index.
func (d *Dictionary) Build(docs []*document.Document) {
	for _, doc := range docs {
		for term, freq := range doc.Terms {
			d.words[term] += freq
		}
	}
	d.buildIndex()
	d.logger.Info("dictionary built", slog.Int("words", len(d.words)))
}

// BuildFromFile tokenizes a plain-text corpus line by line. Useful for
// seeding suggestions from a word list rather than the page library.
func (d *Dictionary) BuildFromFile(path string, tok tokenizer.Tokenizer) error {
	f, err := os.Open(path)
	if err != nil {
		d.logger.Error("cannot open corpus file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		for _, word := range tok.Cut(line) {
			d.words[word]++
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read corpus file: %w", err)
	}

	d.buildIndex()
	d.logger.Info("dictionary built from file",
		slog.String("path", path),
		slog.Int("words", len(d.words)))
	return nil
}

func (d *Dictionary) buildIndex() {
	d.charIndex = make(map[string]map[string]struct{})
	for word := range d.words {
		for _, ch := range textutil.SplitChars(word) {
			set, ok := d.charIndex[ch]
			if !ok {
				set = make(map[string]struct{})
				d.charIndex[ch] = set
			}
			set[word] = struct{}{}
		}
	}
}

// Freq returns the corpus frequency of word (0 if absent).
func (d *Dictionary) Freq(word string) int { return d.words[word] }

// Len returns the number of dictionary words.
func (d *Dictionary) Len() int { return len(d.words) }

// Chars returns the number of indexed characters.
func (d *Dictionary) Chars() int { return len(d.charIndex) }

// Candidates returns the words seeded by the prefix's first character
// whose text also contains every remaining prefix character anywhere,
// sorted by frequency descending (word ascending on ties). The tail
// match is deliberately order-independent.
func (d *Dictionary) Candidates(prefix string) []string {
	chars := textutil.SplitChars(prefix)
	if len(chars) == 0 {
		return nil
	}
	seed, ok := d.charIndex[chars[0]]
	if !ok {
		return nil
	}

	candidates := make([]string, 0, len(seed))
	for word := range seed {
		match := true
		for _, ch := range chars[1:] {
			if !strings.Contains(word, ch) {
				match = false
				break
			}
		}
		if match {
			candidates = append(candidates, word)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		fi, fj := d.words[candidates[i]], d.words[candidates[j]]
		if fi != fj {
			return fi > fj
		}
		return candidates[i] < candidates[j]
	})
	return candidates
}

// StoreDict writes `word freq` lines sorted by frequency descending
// (word ascending on ties, for stable files).
func (d *Dictionary) StoreDict(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dict file: %w", err)
	}
	defer f.Close()

	type entry struct {
		word string
		freq int
	}
	entries := make([]entry, 0, len(d.words))
	for word, freq := range d.words {
		entries = append(entries, entry{word, freq})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].freq != entries[j].freq {
			return entries[i].freq > entries[j].freq
		}
		return entries[i].word < entries[j].word
	})

	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %d\n", e.word, e.freq)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write dict file: %w", err)
	}

	d.logger.Info("dictionary stored", slog.String("path", path))
	return nil
}

// StoreIndex writes one `char word1 word2 ...` line per indexed
// character, characters and words sorted for stable files.
func (d *Dictionary) StoreIndex(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create char index file: %w", err)
	}
	defer f.Close()

	chars := make([]string, 0, len(d.charIndex))
	for ch := range d.charIndex {
		chars = append(chars, ch)
	}
	sort.Strings(chars)

	w := bufio.NewWriter(f)
	for _, ch := range chars {
		words := make([]string, 0, len(d.charIndex[ch]))
		for word := range d.charIndex[ch] {
			words = append(words, word)
		}
		sort.Strings(words)
		w.WriteString(ch)
		for _, word := range words {
			w.WriteByte(' ')
			w.WriteString(word)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write char index file: %w", err)
	}

	d.logger.Info("character index stored", slog.String("path", path))
	return nil
}

// LoadDict replaces the dictionary with the contents of a StoreDict
// file. Malformed lines are skipped.
func (d *Dictionary) LoadDict(path string) error {
	f, err := os.Open(path)
	if err != nil {
		d.logger.Error("cannot open dict file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("open dict file: %w", err)
	}
	defer f.Close()

	d.words = make(map[string]int)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		d.words[fields[0]] = freq
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dict file: %w", err)
	}

	d.logger.Info("dictionary loaded",
		slog.String("path", path),
		slog.Int("words", len(d.words)))
	return nil
}

// LoadIndex replaces the character index with the contents of a
// StoreIndex file.
func (d *Dictionary) LoadIndex(path string) error {
	f, err := os.Open(path)
	if err != nil {
		d.logger.Error("cannot open char index file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("open char index file: %w", err)
	}
	defer f.Close()

	d.charIndex = make(map[string]map[string]struct{})
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		set := make(map[string]struct{}, len(fields)-1)
		for _, word := range fields[1:] {
			set[word] = struct{}{}
		}
		d.charIndex[fields[0]] = set
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read char index file: %w", err)
	}

	d.logger.Info("character index loaded",
		slog.String("path", path),
		slog.Int("chars", len(d.charIndex)))
	return nil
}
