// Package pagelib ingests raw corpus archives into documents and
// persists the page library in its two on-disk forms: the normalized
// record file and the separated meta/content pair served in lite mode.
package pagelib

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/tokenizer"
)

const (
	// maxDocs caps ingestion across all files.
	maxDocs = 300000

	// chunkSize is the read granularity for stream parsing.
	chunkSize = 1 << 20

	docStart = "<doc>"
	docEnd   = "</doc>"

	progressEvery = 10000
)

// Loader stream-parses concatenated <doc>...</doc> records from the
// files of a directory. DocIDs are assigned by an explicit counter,
// dense and monotonic in ingest order, starting at 1.
type Loader struct {
	dataPath string
	tok      tokenizer.Tokenizer
	nextID   int
	logger   *slog.Logger
}

// NewLoader returns a Loader over dataPath.
func NewLoader(dataPath string, tok tokenizer.Tokenizer) *Loader {
	return &Loader{
		dataPath: dataPath,
		tok:      tok,
		logger:   slog.Default().With("component", "pagelib"),
	}
}

// Load scans the data directory (non-recursive) for regular files whose
// name contains ".xml" or ".dat" and parses every record, stopping at
// the document cap.
func (l *Loader) Load() ([]*document.Document, error) {
	entries, err := os.ReadDir(l.dataPath)
	if err != nil {
		l.logger.Error("cannot open data directory",
			slog.String("path", l.dataPath),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var docs []*document.Document
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !strings.Contains(name, ".xml") && !strings.Contains(name, ".dat") {
			continue
		}
		docs = l.parseFile(filepath.Join(l.dataPath, name), docs)
		if len(docs) >= maxDocs {
			break
		}
	}

	l.logger.Info("page library loaded", slog.Int("documents", len(docs)))
	return docs, nil
}

// parseFile reads path in chunks into a rolling buffer, emitting every
// complete <doc>...</doc> record. A record with no close tag yet is
// preserved for the next read; a buffer with no open tag is dropped. If
// the file yields no records at all it is ingested as one document.
func (l *Loader) parseFile(path string, docs []*document.Document) []*document.Document {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("cannot open corpus file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return docs
	}
	defer f.Close()

	initial := len(docs)
	buf := make([]byte, 0, 2*chunkSize)
	chunk := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			var full bool
			buf, docs, full = l.drainRecords(buf, docs)
			if full {
				return docs
			}
		}
		if readErr != nil {
			break
		}
	}

	if len(docs) == initial {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			docs = append(docs, l.emit(string(data)))
		}
	}
	return docs
}

// drainRecords consumes complete records from buf and returns the
// unconsumed remainder. The full flag reports that the document cap was
// reached.
func (l *Loader) drainRecords(buf []byte, docs []*document.Document) ([]byte, []*document.Document, bool) {
	for {
		start := bytes.Index(buf, []byte(docStart))
		if start < 0 {
			return buf[:0], docs, false
		}
		rel := bytes.Index(buf[start:], []byte(docEnd))
		if rel < 0 {
			n := copy(buf, buf[start:])
			return buf[:n], docs, false
		}
		end := start + rel + len(docEnd)
		docs = append(docs, l.emit(string(buf[start:end])))
		if len(docs) >= maxDocs {
			l.logger.Info("document cap reached", slog.Int("max", maxDocs))
			return buf[:0], docs, true
		}
		n := copy(buf, buf[end:])
		buf = buf[:n]
	}
}

func (l *Loader) emit(record string) *document.Document {
	l.nextID++
	if l.nextID%progressEvery == 0 {
		l.logger.Info("loading documents", slog.Int("count", l.nextID))
	}
	return document.Parse(l.nextID, record, l.tok)
}
