// Package server wraps the search facade in the HTTP surface: /search,
// /suggest, /health, /metrics, and an optional static search page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wrensearch/wren/internal/cache"
	"github.com/wrensearch/wren/internal/engine"
	"github.com/wrensearch/wren/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// missingQueryBody is returned with HTTP 200: clients treat the error
// field as a structured response, not a transport failure.
const missingQueryBody = `{"error":"Missing query parameter 'q'"}`

// Server serves queries over HTTP until its context is canceled.
type Server struct {
	addr      string
	engine    *engine.Engine
	cache     *cache.Cache
	staticDir string
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStaticDir serves <dir>/index.html at / and the directory tree
// under /static/.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// New returns a server for addr over the given engine and cache.
func New(addr string, eng *engine.Engine, c *cache.Cache, opts ...Option) *Server {
	s := &Server{
		addr:   addr,
		engine: eng,
		cache:  c,
		logger: slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/suggest", s.handleSuggest)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	if s.staticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
		})
	}
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully:
// in-flight requests complete, then Run returns.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("search server listening", slog.String("addr", s.addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err != nil {
		s.logger.Error("server stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, missingQueryBody)
		return
	}
	writeJSON(w, s.engine.Search(q))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, missingQueryBody)
		return
	}
	writeJSON(w, s.engine.Suggest(q))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body, err := json.Marshal(map[string]any{
		"status":         "ok",
		"cache_size":     s.cache.Len(),
		"cache_hit_rate": s.cache.HitRate(),
	})
	if err != nil {
		writeJSON(w, `{"status":"error"}`)
		return
	}
	writeJSON(w, string(body))
}
