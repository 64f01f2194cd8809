// Package contentstore reads document bodies on demand from the content
// file written at build time, so the serve process never holds full
// bodies in memory.
package contentstore

import (
	"fmt"
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wrensearch/wren/internal/textutil"
)

// maxSummaryRead bounds how much of a document is read per snippet
// request. Long articles contribute only their head to the snippet.
const maxSummaryRead = 5000

// hotRangeCacheSize bounds the number of recently read snippet ranges
// kept in memory.
const hotRangeCacheSize = 256

// Store owns the content file path, not its bytes.
type Store struct {
	path   string
	ranges *lru.Cache[int64, []byte]
	logger *slog.Logger
}

// New returns a store over the content file at path. The file is opened
// per read; a missing file degrades to empty reads.
func New(path string) (*Store, error) {
	ranges, err := lru.New[int64, []byte](hotRangeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create range cache: %w", err)
	}
	return &Store{
		path:   path,
		ranges: ranges,
		logger: slog.Default().With("component", "contentstore"),
	}, nil
}

// ReadContent returns length bytes starting at offset, or fewer at EOF.
// A missing or unreadable file returns nil after logging.
func (s *Store) ReadContent(offset, length int64) []byte {
	if length <= 0 {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Error("cannot open content file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil
	}
	defer f.Close()

	buf := make([]byte, length)
	n, _ := f.ReadAt(buf, offset)
	return buf[:n]
}

// Summary reads at most min(length, 5000) bytes of the document and
// applies the standard snippet window over that slice. Recently read
// ranges are cached; cached slices are read-only.
func (s *Store) Summary(offset, length int64, queryWords []string, maxChars int) string {
	readLen := length
	if readLen > maxSummaryRead {
		readLen = maxSummaryRead
	}

	text, ok := s.ranges.Get(offset)
	if !ok || int64(len(text)) != readLen {
		text = s.ReadContent(offset, readLen)
		if len(text) > 0 {
			s.ranges.Add(offset, text)
		}
	}
	if len(text) == 0 {
		return ""
	}
	return textutil.Snippet(string(text), queryWords, maxChars)
}
