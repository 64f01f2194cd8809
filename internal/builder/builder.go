// Package builder runs the offline build pipeline: ingest, dedup,
// index, dictionary, page store. Single-threaded by contract so docIds
// stay dense and monotonic in ingest order.
package builder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/wrensearch/wren/internal/config"
	"github.com/wrensearch/wren/internal/dedup"
	"github.com/wrensearch/wren/internal/dict"
	"github.com/wrensearch/wren/internal/index"
	"github.com/wrensearch/wren/internal/metrics"
	"github.com/wrensearch/wren/internal/pagelib"
	"github.com/wrensearch/wren/internal/tokenizer"
)

// Option configures a build run.
type Option func(*builder)

// WithMetrics enables Prometheus instrumentation of build totals.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *builder) {
		b.metrics = m
	}
}

type builder struct {
	cfg     *config.Config
	tok     tokenizer.Tokenizer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Run executes the full build. Two concurrent builds over the same
// output would corrupt it, so the run holds an exclusive file lock next
// to the index for its duration.
func Run(cfg *config.Config, tok tokenizer.Tokenizer, opts ...Option) error {
	b := &builder{
		cfg:    cfg,
		tok:    tok,
		logger: slog.Default().With("component", "builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b.run()
}

func (b *builder) run() error {
	start := time.Now()

	for _, path := range []string{
		b.cfg.Build.IndexPath,
		b.cfg.Build.PagelibPath,
		b.cfg.Build.DictPathOutput,
		b.cfg.Build.DictIndexPath,
	} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	lock := flock.New(b.cfg.Build.IndexPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another build holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	docs, err := pagelib.NewLoader(b.cfg.Build.DataPath, b.tok).Load()
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found under %s", b.cfg.Build.DataPath)
	}

	kept := dedup.Filter(docs)
	if b.metrics != nil {
		b.metrics.DocsIndexedTotal.Add(float64(len(kept)))
		b.metrics.DocsDedupedTotal.Add(float64(len(docs) - len(kept)))
	}

	idx := index.New()
	idx.Build(kept)
	if err := idx.Store(b.cfg.Build.IndexPath); err != nil {
		return err
	}

	d := dict.New()
	d.Build(kept)
	if err := d.StoreDict(b.cfg.Build.DictPathOutput); err != nil {
		return err
	}
	if err := d.StoreIndex(b.cfg.Build.DictIndexPath); err != nil {
		return err
	}

	if err := pagelib.Store(kept, b.cfg.Build.PagelibPath); err != nil {
		return err
	}
	if err := pagelib.StoreSeparated(kept, b.cfg.Build.MetaPath(), b.cfg.Build.ContentPath()); err != nil {
		return err
	}

	b.logger.Info("build complete",
		slog.Int("documents", len(kept)),
		slog.Int("dropped_duplicates", len(docs)-len(kept)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
