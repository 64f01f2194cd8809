package dict

import (
	"container/heap"

	"github.com/wrensearch/wren/internal/textutil"
)

// Recommender ranks dictionary words by edit distance to a query,
// breaking ties by corpus frequency.
type Recommender struct {
	dict *Dictionary
}

// NewRecommender returns a recommender over d.
func NewRecommender(d *Dictionary) *Recommender {
	return &Recommender{dict: d}
}

// Recommend returns up to topK dictionary words within maxDistance
// edits of query. Distance is Levenshtein over code-point units; the
// length pre-filter skips words that cannot be within range.
func (r *Recommender) Recommend(query string, topK, maxDistance int) []string {
	qc := textutil.SplitChars(query)

	h := &candidateHeap{}
	heap.Init(h)
	for word, freq := range r.dict.words {
		wc := textutil.SplitChars(word)
		diff := len(qc) - len(wc)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDistance {
			continue
		}
		dist := editDistance(qc, wc)
		if dist <= maxDistance {
			heap.Push(h, candidate{word: word, distance: dist, freq: freq})
		}
	}

	results := make([]string, 0, topK)
	for h.Len() > 0 && len(results) < topK {
		results = append(results, heap.Pop(h).(candidate).word)
	}
	return results
}

// EditDistance returns the Levenshtein distance between a and b over
// code-point units.
func EditDistance(a, b string) int {
	return editDistance(textutil.SplitChars(a), textutil.SplitChars(b))
}

// editDistance runs the standard two-row DP with unit costs;
// substitution compares whole code-point units, not bytes.
func editDistance(a, b []string) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			min := prev[j] // deletion
			if curr[j-1] < min {
				min = curr[j-1] // insertion
			}
			if prev[j-1] < min {
				min = prev[j-1] // substitution
			}
			curr[j] = min + 1
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

type candidate struct {
	word     string
	distance int
	freq     int
}

// candidateHeap pops the smallest distance first, higher frequency on
// equal distance, then lexicographic word order for determinism.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	if h[i].freq != h[j].freq {
		return h[i].freq > h[j].freq
	}
	return h[i].word < h[j].word
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
