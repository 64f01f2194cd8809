package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrensearch/wren/internal/cache"
	"github.com/wrensearch/wren/internal/contentstore"
	"github.com/wrensearch/wren/internal/dict"
	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/index"
	"github.com/wrensearch/wren/internal/pagelib"
	"github.com/wrensearch/wren/internal/tokenizer"
)

var tok = tokenizer.NewWhitespace(nil)

func corpus() []*document.Document {
	recordFmt := "<doc><title>%s</title><url>%s</url><content>%s</content></doc>"
	return []*document.Document{
		document.Parse(1, fmt.Sprintf(recordFmt, "手机 新闻", "http://a", "苹果 手机 今日 发布"), tok),
		document.Parse(2, fmt.Sprintf(recordFmt, "电脑 新闻", "http://b", "苹果 电脑 今日 降价"), tok),
		document.Parse(3, fmt.Sprintf(recordFmt, "水果 行情", "http://c", "香蕉 水果 价格 上涨"), tok),
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	docs := corpus()
	idx := index.New()
	idx.Build(docs)

	pages := make(map[int]*document.Document, len(docs))
	for _, d := range docs {
		pages[d.DocID] = d
	}
	opts = append([]Option{WithPages(pages)}, opts...)
	return New(tok, idx, cache.New(64), opts...)
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestSearch_ResponseShape(t *testing.T) {
	e := newEngine(t)

	resp := decode(t, e.Search("苹果"))

	assert.Equal(t, "苹果", resp["query"])
	assert.EqualValues(t, 2, resp["total"])
	results := resp["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	for _, key := range []string{"docId", "score", "title", "url", "summary"} {
		assert.Contains(t, first, key)
	}
	assert.Contains(t, first["summary"], "苹果")
}

func TestSearch_EnrichesFromPages(t *testing.T) {
	e := newEngine(t)

	resp := decode(t, e.Search("香蕉"))

	results := resp["results"].([]any)
	require.Len(t, results, 1)
	hit := results[0].(map[string]any)
	assert.EqualValues(t, 3, hit["docId"])
	assert.Equal(t, "水果 行情", hit["title"])
	assert.Equal(t, "http://c", hit["url"])
}

func TestSearch_CacheHitReturnsSameBody(t *testing.T) {
	e := newEngine(t)

	first := e.Search("苹果")
	second := e.Search("苹果")

	assert.Equal(t, first, second)
	assert.InDelta(t, 0.5, e.cache.HitRate(), 1e-12, "one miss then one hit")
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := newEngine(t)

	resp := decode(t, e.Search(""))

	assert.EqualValues(t, 0, resp["total"])
	assert.Empty(t, resp["results"])
}

func TestSearch_UnknownTerm(t *testing.T) {
	e := newEngine(t)

	resp := decode(t, e.Search("不存在的词"))

	assert.EqualValues(t, 0, resp["total"])
}

func TestSearch_MissingMetadataFallback(t *testing.T) {
	// Given: an engine whose page map lacks a hit
	docs := corpus()
	idx := index.New()
	idx.Build(docs)
	e := New(tok, idx, cache.New(16), WithPages(map[int]*document.Document{}))

	resp := decode(t, e.Search("苹果"))

	results := resp["results"].([]any)
	require.NotEmpty(t, results)
	hit := results[0].(map[string]any)
	assert.Equal(t, "Document 1", hit["title"])
	assert.Equal(t, "", hit["url"])
	assert.Equal(t, "", hit["summary"])
}

func TestSearch_LiteModeUsesContentStore(t *testing.T) {
	// Given: the separated page library on disk
	docs := corpus()
	dir := t.TempDir()
	metaPath := dir + "/p.meta"
	contentPath := dir + "/p.content"
	require.NoError(t, pagelib.StoreSeparated(docs, metaPath, contentPath))

	idx := index.New()
	idx.Build(docs)
	store, err := contentstore.New(contentPath)
	require.NoError(t, err)
	e := New(tok, idx, cache.New(16), WithPageMeta(pagelib.LoadMeta(metaPath), store))

	// When: searching in lite mode
	resp := decode(t, e.Search("香蕉"))

	// Then: enrichment comes from meta + on-demand content reads
	results := resp["results"].([]any)
	require.Len(t, results, 1)
	hit := results[0].(map[string]any)
	assert.Equal(t, "水果 行情", hit["title"])
	assert.Contains(t, hit["summary"], "香蕉")
}

func TestSearch_SanitizesBrokenUTF8(t *testing.T) {
	d := document.Parse(1, "<doc><title>ok</title><content>苹果</content></doc>", tok)
	d.Title = "ok" + string([]byte{0xFF})
	idx := index.New()
	idx.Build([]*document.Document{d})
	e := New(tok, idx, cache.New(16), WithPages(map[int]*document.Document{1: d}))

	resp := decode(t, e.Search("苹果"))

	hit := resp["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "ok", hit["title"])
}

func TestSuggest_WithoutRecommender(t *testing.T) {
	e := newEngine(t)

	resp := decode(t, e.Suggest("苹果"))

	assert.Equal(t, "苹果", resp["query"])
	suggestions, ok := resp["suggestions"].([]any)
	require.True(t, ok, "suggestions must be an array, not null")
	assert.Empty(t, suggestions)
}

func TestSuggest_WithRecommender(t *testing.T) {
	d := dict.New()
	d.Build(corpus())
	e := newEngine(t, WithRecommender(dict.NewRecommender(d)))

	resp := decode(t, e.Suggest("苹"))

	suggestions := resp["suggestions"].([]any)
	assert.Contains(t, suggestions, "苹果")
}
