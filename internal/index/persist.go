package index

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Line-oriented text format:
//
//	#META <totalDocs> <avgDocLen>
//	#DOCLENS <docId>:<len> <docId>:<len> ...
//	<term> <docId>:<weight>:<tf> <docId>:<weight>:<tf> ...
//
// Weights carry 17 significant digits, enough that ranking order
// survives a store/load round trip.

const weightDigits = 17

// Store writes the index to path. Terms and doclens are emitted in
// sorted order so repeated builds over the same corpus produce
// identical files.
func (idx *Index) Store(path string) error {
	f, err := os.Create(path)
	if err != nil {
		idx.logger.Error("cannot create index file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "#META %d %s\n", idx.totalDocs, formatWeight(idx.avgDocLen))

	docIDs := make([]int, 0, len(idx.docLens))
	for id := range idx.docLens {
		docIDs = append(docIDs, id)
	}
	sort.Ints(docIDs)
	w.WriteString("#DOCLENS")
	for _, id := range docIDs {
		fmt.Fprintf(w, " %d:%d", id, idx.docLens[id])
	}
	w.WriteByte('\n')

	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		w.WriteString(term)
		for _, p := range idx.postings[term] {
			fmt.Fprintf(w, " %d:%s:%d", p.DocID, formatWeight(p.Weight), p.TermFreq)
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}

	idx.logger.Info("index stored",
		slog.String("path", path),
		slog.Int("terms", len(idx.postings)))
	return nil
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', weightDigits, 64)
}

// Load reads an index written by Store. Malformed lines and entries are
// skipped; they never abort the load.
func Load(path string) (*Index, error) {
	idx := New()

	f, err := os.Open(path)
	if err != nil {
		idx.logger.Error("cannot open index file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return idx, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
		case strings.HasPrefix(line, "#META"):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				continue
			}
			if n, err := strconv.Atoi(fields[1]); err == nil {
				idx.totalDocs = n
			}
			if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
				idx.avgDocLen = v
			}
		case strings.HasPrefix(line, "#DOCLENS"):
			for _, item := range strings.Fields(line)[1:] {
				id, length, ok := parsePair(item)
				if !ok {
					continue
				}
				idx.docLens[id] = length
				if id > idx.maxDocID {
					idx.maxDocID = id
				}
			}
		default:
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			term := fields[0]
			for _, item := range fields[1:] {
				p, ok := parsePosting(item)
				if !ok {
					continue
				}
				idx.postings[term] = append(idx.postings[term], p)
				if p.DocID > idx.maxDocID {
					idx.maxDocID = p.DocID
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return idx, fmt.Errorf("read index file: %w", err)
	}

	idx.logger.Info("index loaded",
		slog.String("path", path),
		slog.Int("terms", len(idx.postings)),
		slog.Int("documents", idx.totalDocs))
	return idx, nil
}

func parsePair(s string) (int, int, bool) {
	a, b, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	id, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, false
	}
	n, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, false
	}
	return id, n, true
}

func parsePosting(s string) (Posting, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Posting{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Posting{}, false
	}
	weight, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Posting{}, false
	}
	tf, err := strconv.Atoi(parts[2])
	if err != nil {
		return Posting{}, false
	}
	return Posting{DocID: id, Weight: weight, TermFreq: tf}, true
}
