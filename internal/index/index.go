// Package index implements the BM25-weighted inverted index: offline
// build over deduplicated documents, top-k disjunctive retrieval, and
// the text persistence format.
//
// After Build or Load the index is immutable and may be shared across
// request goroutines without locking.
package index

import (
	"log/slog"
	"math"
	"sort"

	"github.com/wrensearch/wren/internal/document"
)

// BM25 parameters.
const (
	K1 = 1.2
	B  = 0.75
)

// Posting is one document's precomputed BM25 contribution for a term.
type Posting struct {
	DocID    int
	Weight   float64
	TermFreq int
}

// Result is one ranked search hit.
type Result struct {
	DocID int
	Score float64
}

// Index maps terms to weight-sorted posting lists, plus the per-document
// lengths the weights were normalized with.
type Index struct {
	postings  map[string][]Posting
	docLens   map[int]int
	totalDocs int
	avgDocLen float64
	maxDocID  int
	logger    *slog.Logger
}

// New returns an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string][]Posting),
		docLens:  make(map[int]int),
		logger:   slog.Default().With("component", "index"),
	}
}

// Build computes BM25-weighted postings for docs in two passes: document
// frequencies and lengths first, weights second. Posting lists come out
// sorted by weight descending (docID ascending on ties). Building over
// zero documents is a logged no-op.
func (idx *Index) Build(docs []*document.Document) {
	idx.totalDocs = len(docs)
	if idx.totalDocs == 0 {
		idx.logger.Warn("no documents to index")
		return
	}

	df := make(map[string]int)
	var totalLen int64
	for _, d := range docs {
		docLen := d.Len()
		idx.docLens[d.DocID] = docLen
		totalLen += int64(docLen)
		if d.DocID > idx.maxDocID {
			idx.maxDocID = d.DocID
		}
		for term := range d.Terms {
			df[term]++
		}
	}
	idx.avgDocLen = float64(totalLen) / float64(idx.totalDocs)

	for _, d := range docs {
		docLen := idx.docLens[d.DocID]
		for term, tf := range d.Terms {
			weight := idx.bm25(tf, docLen, df[term])
			idx.postings[term] = append(idx.postings[term], Posting{
				DocID:    d.DocID,
				Weight:   weight,
				TermFreq: tf,
			})
		}
	}

	for term := range idx.postings {
		sortPostings(idx.postings[term])
	}

	idx.logger.Info("inverted index built",
		slog.Int("terms", len(idx.postings)),
		slog.Int("documents", idx.totalDocs),
		slog.Float64("avg_doc_len", idx.avgDocLen))
}

func sortPostings(list []Posting) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Weight != list[j].Weight {
			return list[i].Weight > list[j].Weight
		}
		return list[i].DocID < list[j].DocID
	})
}

// idf uses the ln(x+1) form, which stays positive whenever docFreq <=
// totalDocs, so even a term in every document keeps a small positive
// weight. The clamp at zero only applies to inputs with docFreq greater
// than totalDocs.
func idf(docFreq, totalDocs int) float64 {
	if docFreq == 0 {
		return 0
	}
	v := math.Log((float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5) + 1)
	if v < 0 {
		return 0
	}
	return v
}

func (idx *Index) bm25(termFreq, docLen, docFreq int) float64 {
	norm := float64(termFreq) * (K1 + 1) /
		(float64(termFreq) + K1*(1-B+B*float64(docLen)/idx.avgDocLen))
	return idf(docFreq, idx.totalDocs) * norm
}

// Search scores the disjunction of queryWords and returns up to topK
// results by score descending, docID ascending on ties. Unknown terms
// contribute nothing; an empty query yields nil. The dense score vector
// is allocated per call so concurrent searches never share state.
func (idx *Index) Search(queryWords []string, topK int) []Result {
	if len(queryWords) == 0 || idx.totalDocs == 0 || topK <= 0 {
		return nil
	}

	scores := make([]float64, idx.maxDocID+1)
	var dirty []int
	for _, w := range queryWords {
		for _, p := range idx.postings[w] {
			if scores[p.DocID] == 0 {
				dirty = append(dirty, p.DocID)
			}
			scores[p.DocID] += p.Weight
		}
	}

	// Zero-weight postings can enter dirty more than once.
	sort.Ints(dirty)
	results := make([]Result, 0, len(dirty))
	prev := -1
	for _, id := range dirty {
		if id == prev {
			continue
		}
		prev = id
		results = append(results, Result{DocID: id, Score: scores[id]})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// TotalDocs returns the number of indexed documents.
func (idx *Index) TotalDocs() int { return idx.totalDocs }

// AvgDocLen returns the mean document length fixed at build time.
func (idx *Index) AvgDocLen() float64 { return idx.avgDocLen }

// DocLen returns the length of docID in terms.
func (idx *Index) DocLen(docID int) int { return idx.docLens[docID] }

// Postings returns the posting list for term (nil if absent). The
// returned slice is shared and must not be mutated.
func (idx *Index) Postings(term string) []Posting { return idx.postings[term] }

// Terms returns the number of distinct indexed terms.
func (idx *Index) Terms() int { return len(idx.postings) }
