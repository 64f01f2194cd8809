package pagelib

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/tokenizer"
)

// WebPageMeta locates one document's content inside the content file.
type WebPageMeta struct {
	DocID         int
	Title         string
	URL           string
	ContentOffset int64
	ContentLength int64
}

const metaHeader = "#FORMAT docId|title|url|offset|length"

var docidRe = regexp.MustCompile(`(?s)<docid>(.*?)</docid>`)

// metaField strips the bytes that would break the line format.
var metaField = strings.NewReplacer("\n", " ", "\r", " ", "|", " ")

// Store writes the normalized <doc> record file. The full serve mode
// reloads documents from this file instead of re-crawling the raw
// corpus, so the docids assigned at build time are written out.
func Store(docs []*document.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create page library: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, d := range docs {
		fmt.Fprintf(w, "<doc>\n<docid>%d</docid>\n<title>%s</title>\n<url>%s</url>\n<content>%s</content>\n</doc>\n\n",
			d.DocID, d.Title, d.URL, d.Content)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write page library: %w", err)
	}

	slog.Default().Info("page library stored",
		slog.String("path", path),
		slog.Int("documents", len(docs)))
	return nil
}

// StoreSeparated writes the contents back-to-back as raw bytes into
// contentPath and one metadata line per document into metaPath. The
// concatenation of contents in docID insertion order matches the content
// file byte for byte.
func StoreSeparated(docs []*document.Document, metaPath, contentPath string) error {
	content, err := os.Create(contentPath)
	if err != nil {
		return fmt.Errorf("create content file: %w", err)
	}
	defer content.Close()

	meta, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("create meta file: %w", err)
	}
	defer meta.Close()

	contentW := bufio.NewWriter(content)
	metaW := bufio.NewWriter(meta)
	fmt.Fprintln(metaW, metaHeader)

	var offset int64
	for _, d := range docs {
		n, err := contentW.WriteString(d.Content)
		if err != nil {
			return fmt.Errorf("write content: %w", err)
		}
		fmt.Fprintf(metaW, "%d|%s|%s|%d|%d\n",
			d.DocID,
			metaField.Replace(d.Title),
			metaField.Replace(d.URL),
			offset, n)
		offset += int64(n)
	}

	if err := contentW.Flush(); err != nil {
		return fmt.Errorf("flush content: %w", err)
	}
	if err := metaW.Flush(); err != nil {
		return fmt.Errorf("flush meta: %w", err)
	}

	slog.Default().Info("separated page library stored",
		slog.String("meta", metaPath),
		slog.String("content", contentPath),
		slog.Int("documents", len(docs)),
		slog.Int64("content_bytes", offset))
	return nil
}

// LoadMeta parses the metadata file into a docID-keyed map. Blank lines,
// #-prefixed lines, and malformed lines are skipped.
func LoadMeta(path string) map[int]WebPageMeta {
	result := make(map[int]WebPageMeta)

	f, err := os.Open(path)
	if err != nil {
		slog.Default().Error("cannot open meta file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return result
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), chunkSize)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 5 {
			continue
		}
		docID, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		off, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			continue
		}
		length, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			continue
		}
		result[docID] = WebPageMeta{
			DocID:         docID,
			Title:         parts[1],
			URL:           parts[2],
			ContentOffset: off,
			ContentLength: length,
		}
	}

	slog.Default().Info("page metadata loaded",
		slog.String("path", path),
		slog.Int("entries", len(result)))
	return result
}

// LoadPages reloads the normalized page library written by Store,
// keeping the docids assigned at build time. Used by the full serve
// mode, which holds complete documents in memory.
func LoadPages(path string, tok tokenizer.Tokenizer) (map[int]*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page library: %w", err)
	}

	pages := make(map[int]*document.Document)
	buf := data
	for {
		start := bytes.Index(buf, []byte(docStart))
		if start < 0 {
			break
		}
		rel := bytes.Index(buf[start:], []byte(docEnd))
		if rel < 0 {
			break
		}
		end := start + rel + len(docEnd)
		record := string(buf[start:end])
		buf = buf[end:]

		m := docidRe.FindStringSubmatch(record)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(m[1]))
		if err != nil {
			continue
		}
		pages[id] = document.Parse(id, record, tok)
	}

	slog.Default().Info("page library reloaded",
		slog.String("path", path),
		slog.Int("documents", len(pages)))
	return pages, nil
}
