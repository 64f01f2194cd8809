package tokenizer

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/huichen/sego"
)

// Sego segments CJK text with the sego dictionary segmenter in search
// mode, then applies the shared term filter.
type Sego struct {
	seg  sego.Segmenter
	stop map[string]struct{}
}

// NewSego loads the segment dictionary at dictPath (with userDictPath
// appended when set; sego accepts a comma-separated dictionary list) and
// the stop-word file at stopWordPath. A missing stop-word file degrades
// to an empty set; a missing dictionary is an error.
func NewSego(dictPath, userDictPath, stopWordPath string) (*Sego, error) {
	if _, err := os.Stat(dictPath); err != nil {
		return nil, fmt.Errorf("segment dictionary: %w", err)
	}
	dicts := dictPath
	if userDictPath != "" {
		if _, err := os.Stat(userDictPath); err != nil {
			return nil, fmt.Errorf("user dictionary: %w", err)
		}
		dicts += "," + userDictPath
	}

	t := &Sego{stop: make(map[string]struct{})}
	t.seg.LoadDictionary(dicts)

	if stopWordPath != "" {
		stop, err := LoadStopWords(stopWordPath)
		if err != nil {
			slog.Error("stop words unavailable, continuing without",
				slog.String("path", stopWordPath),
				slog.String("error", err.Error()))
		}
		t.stop = stop
	}
	return t, nil
}

// Cut implements Tokenizer.
func (t *Sego) Cut(sentence string) []string {
	segments := t.seg.Segment([]byte(sentence))
	return filterTerms(sego.SegmentsToSlice(segments, true), t.stop)
}
