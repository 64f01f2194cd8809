// Package document parses corpus records into documents: title, url,
// content, term frequencies, SimHash fingerprint, and query-aware
// snippets.
package document

import (
	"regexp"

	"github.com/wrensearch/wren/internal/textutil"
	"github.com/wrensearch/wren/internal/tokenizer"
)

// Tag bodies may span lines, hence (?s). <contenttitle> is a legacy
// alias for <title> in crawled archives.
var (
	titleRe   = regexp.MustCompile(`(?s)<(?:content)?title>(.*?)</(?:content)?title>`)
	urlRe     = regexp.MustCompile(`(?s)<url>(.*?)</url>`)
	contentRe = regexp.MustCompile(`(?s)<content>(.*?)</content>`)
)

// titleFallbackBytes is how much of the raw input becomes the title when
// a record yields neither a title nor a content body.
const titleFallbackBytes = 50

// SummaryChars is the snippet length in code points.
const SummaryChars = 150

// Document is one parsed corpus record. Terms holds the
// post-stop-word-filter term frequencies of title+content; the sum of
// its values is the document length used by BM25.
type Document struct {
	DocID   int
	Title   string
	URL     string
	Content string
	Terms   map[string]int
}

// Parse extracts title/url/content from an XML-ish record and tokenizes
// it. A record with neither title nor content is treated as raw content
// with the title derived from its first bytes. The docID is assigned by
// the caller (dense and monotonic in ingest order).
func Parse(docID int, record string, tok tokenizer.Tokenizer) *Document {
	d := &Document{
		DocID: docID,
		Terms: make(map[string]int),
	}

	if m := titleRe.FindStringSubmatch(record); m != nil {
		d.Title = m[1]
	}
	if m := urlRe.FindStringSubmatch(record); m != nil {
		d.URL = m[1]
	}
	if m := contentRe.FindStringSubmatch(record); m != nil {
		d.Content = m[1]
	}

	if d.Title == "" && d.Content == "" {
		d.Content = record
		if len(record) > titleFallbackBytes {
			d.Title = record[:titleFallbackBytes]
		} else {
			d.Title = record
		}
	}

	for _, term := range tok.Cut(d.Title + " " + d.Content) {
		d.Terms[term]++
	}
	return d
}

// Len returns the document length in terms, the BM25 normalization
// quantity.
func (d *Document) Len() int {
	total := 0
	for _, freq := range d.Terms {
		total += freq
	}
	return total
}

// Summary returns a query-aware snippet of the content.
func (d *Document) Summary(queryWords []string) string {
	if d.Content == "" {
		return ""
	}
	return textutil.Snippet(d.Content, queryWords, SummaryChars)
}
