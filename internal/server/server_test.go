package server

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrensearch/wren/internal/cache"
	"github.com/wrensearch/wren/internal/document"
	"github.com/wrensearch/wren/internal/engine"
	"github.com/wrensearch/wren/internal/index"
	"github.com/wrensearch/wren/internal/tokenizer"
)

func newTestServer(t *testing.T) (*Server, *cache.Cache) {
	t.Helper()
	tok := tokenizer.NewWhitespace(nil)
	docs := []*document.Document{
		document.Parse(1, "<doc><title>手机</title><url>http://a</url><content>苹果 手机 发布</content></doc>", tok),
		document.Parse(2, "<doc><title>水果</title><url>http://b</url><content>香蕉 水果 上涨</content></doc>", tok),
	}
	idx := index.New()
	idx.Build(docs)
	pages := map[int]*document.Document{1: docs[0], 2: docs[1]}
	c := cache.New(64)
	eng := engine.New(tok, idx, c, engine.WithPages(pages))
	return New("127.0.0.1:0", eng, c), c
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.routes()

	req := httptest.NewRequest("GET", "/search?q="+urlEncode("苹果"), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "苹果", resp["query"])
	assert.EqualValues(t, 1, resp["total"])
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.routes()

	req := httptest.NewRequest("GET", "/search", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// Structured error, transport-level 200.
	assert.Equal(t, 200, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Missing query parameter 'q'", resp["error"])
}

func TestHandleSuggest_MissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/suggest", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing query parameter")
}

func TestHandleSuggest_NoRecommender(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/suggest?q=x", nil))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	suggestions, ok := resp["suggestions"].([]any)
	require.True(t, ok)
	assert.Empty(t, suggestions)
}

func TestHandleHealth(t *testing.T) {
	srv, c := newTestServer(t)
	mux := srv.routes()

	// Warm the counters with one miss and one hit.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/search?q="+urlEncode("苹果"), nil))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/search?q="+urlEncode("苹果"), nil))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.EqualValues(t, c.Len(), resp["cache_size"])
	assert.InDelta(t, 0.5, resp["cache_hit_rate"].(float64), 1e-12)
}

func urlEncode(s string) string {
	out := ""
	for i := 0; i < len(s); i++ {
		out += fmt.Sprintf("%%%02X", s[i])
	}
	return out
}
