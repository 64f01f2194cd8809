// Package engine is the search facade: cache check, tokenization, index
// retrieval, metadata and snippet enrichment, JSON serialization. The
// HTTP layer is thin glue over Search and Suggest.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wrensearch/wren/internal/cache"
	"github.com/wrensearch/wren/internal/contentstore"
	"github.com/wrensearch/wren/internal/dict"
	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/index"
	"github.com/wrensearch/wren/internal/metrics"
	"github.com/wrensearch/wren/internal/pagelib"
	"github.com/wrensearch/wren/internal/textutil"
	"github.com/wrensearch/wren/internal/tokenizer"
)

const (
	maxResults         = 20
	suggestTopK        = 5
	suggestMaxDistance = 2
)

// SearchResult is one enriched hit in the search response.
type SearchResult struct {
	DocID   int     `json:"docId"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Summary string  `json:"summary"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

type suggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// Engine answers search and suggest queries over the read-only index.
// All referenced structures except the cache are immutable after load,
// so one Engine serves all request goroutines.
type Engine struct {
	tok         tokenizer.Tokenizer
	idx         *index.Index
	cache       *cache.Cache
	pages       map[int]*document.Document
	pageMeta    map[int]pagelib.WebPageMeta
	content     *contentstore.Store
	recommender *dict.Recommender
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPages wires the full serve mode: complete documents held in
// memory, snippets generated from them directly.
func WithPages(pages map[int]*document.Document) Option {
	return func(e *Engine) {
		e.pages = pages
	}
}

// WithPageMeta wires the lite serve mode: metadata in memory, bodies
// read on demand from the content store.
func WithPageMeta(meta map[int]pagelib.WebPageMeta, store *contentstore.Store) Option {
	return func(e *Engine) {
		e.pageMeta = meta
		e.content = store
	}
}

// WithRecommender enables keyword suggestions.
func WithRecommender(r *dict.Recommender) Option {
	return func(e *Engine) {
		e.recommender = r
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New returns an engine over the given tokenizer, index, and cache.
func New(tok tokenizer.Tokenizer, idx *index.Index, c *cache.Cache, opts ...Option) *Engine {
	e := &Engine{
		tok:    tok,
		idx:    idx,
		cache:  c,
		logger: slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the serialized JSON response for query. Two concurrent
// misses on the same query both compute it; last writer wins on the
// cache put, which is benign since the value is a pure function of the
// query and the immutable index.
func (e *Engine) Search(query string) string {
	start := time.Now()

	if cached, ok := e.cache.Get(query); ok {
		e.cache.RecordQuery(true)
		if e.metrics != nil {
			e.metrics.CacheHitsTotal.Inc()
			e.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
			e.metrics.SearchLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		}
		return cached
	}
	e.cache.RecordQuery(false)

	queryWords := e.tok.Cut(query)
	hits := e.idx.Search(queryWords, maxResults)

	resp := searchResponse{
		Query:   query,
		Total:   len(hits),
		Results: make([]SearchResult, 0, len(hits)),
	}
	for _, h := range hits {
		resp.Results = append(resp.Results, e.enrich(h, queryWords))
	}

	body, err := json.Marshal(resp)
	if err != nil {
		// Unreachable with sanitized strings, but never propagate.
		e.logger.Error("response serialization failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return `{"error":"internal error"}`
	}

	out := string(body)
	e.cache.Put(query, out)

	if e.metrics != nil {
		e.metrics.CacheMissesTotal.Inc()
		result := "miss"
		if len(hits) == 0 {
			result = "zero_result"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(result).Inc()
		e.metrics.SearchLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	}
	return out
}

// enrich joins one index hit with its title, url, and snippet. Every
// outbound string passes the UTF-8 sanitizer before serialization.
func (e *Engine) enrich(h index.Result, queryWords []string) SearchResult {
	r := SearchResult{DocID: h.DocID, Score: h.Score}

	switch {
	case e.pageMeta != nil:
		if m, ok := e.pageMeta[h.DocID]; ok {
			r.Title = textutil.Sanitize(m.Title)
			r.URL = textutil.Sanitize(m.URL)
			r.Summary = textutil.Sanitize(
				e.content.Summary(m.ContentOffset, m.ContentLength, queryWords, document.SummaryChars))
			return r
		}
	case e.pages != nil:
		if d, ok := e.pages[h.DocID]; ok {
			r.Title = textutil.Sanitize(d.Title)
			r.URL = textutil.Sanitize(d.URL)
			r.Summary = textutil.Sanitize(d.Summary(queryWords))
			return r
		}
	}

	r.Title = fmt.Sprintf("Document %d", h.DocID)
	return r
}

// Suggest returns the serialized JSON suggestion response. Without a
// recommender the suggestion list is empty, never an error.
func (e *Engine) Suggest(query string) string {
	resp := suggestResponse{Query: query, Suggestions: []string{}}
	if e.recommender != nil {
		if s := e.recommender.Recommend(query, suggestTopK, suggestMaxDistance); len(s) > 0 {
			resp.Suggestions = s
		}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		e.logger.Error("suggest serialization failed", slog.String("error", err.Error()))
		return `{"error":"internal error"}`
	}
	return string(body)
}
