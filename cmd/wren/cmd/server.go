package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wrensearch/wren/internal/cache"
	"github.com/wrensearch/wren/internal/contentstore"
	"github.com/wrensearch/wren/internal/dict"
	"github.com/wrensearch/wren/internal/engine"
	"github.com/wrensearch/wren/internal/index"
	"github.com/wrensearch/wren/internal/metrics"
	"github.com/wrensearch/wren/internal/pagelib"
	"github.com/wrensearch/wren/internal/server"
)

func newServerCmd() *cobra.Command {
	var lite bool
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the search server",
		Long: `Start the search server over a previously built index.

By default full documents are reloaded into memory. With --lite only
metadata is held in memory and snippets are read from the content file
on demand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), lite)
		},
	}
	cmd.Flags().BoolVar(&lite, "lite", false, "Serve snippets from the content store instead of holding full bodies in memory")
	return cmd
}

// newServerLiteCmd is the spelled-out form of `server --lite`.
func newServerLiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server-lite",
		Short: "Start the search server in memory-optimized mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), true)
		},
	}
}

func runServer(ctx context.Context, lite bool) error {
	tok := newTokenizer()

	// The index is required; everything else degrades.
	idx, err := index.Load(cfg.Build.IndexPath)
	if err != nil {
		return err
	}

	c := cache.New(cfg.Server.CacheSize)
	opts := []engine.Option{engine.WithMetrics(metrics.New())}

	if lite {
		slog.Info("serve mode: lite (metadata + on-demand content)")
		store, err := contentstore.New(cfg.Build.ContentPath())
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithPageMeta(pagelib.LoadMeta(cfg.Build.MetaPath()), store))
	} else {
		slog.Info("serve mode: full (documents in memory)")
		pages, err := pagelib.LoadPages(cfg.Build.PagelibPath, tok)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithPages(pages))
	}

	// Dictionary and recommender are optional; without them /suggest
	// returns empty suggestions.
	d := dict.New()
	if err := d.LoadDict(cfg.Build.DictPathOutput); err == nil {
		if err := d.LoadIndex(cfg.Build.DictIndexPath); err != nil {
			slog.Warn("character index unavailable", slog.String("error", err.Error()))
		}
		opts = append(opts, engine.WithRecommender(dict.NewRecommender(d)))
		slog.Info("keyword recommender enabled", slog.Int("words", d.Len()))
	} else {
		slog.Warn("dictionary unavailable, suggestions disabled", slog.String("error", err.Error()))
	}

	eng := engine.New(tok, idx, c, opts...)

	var srvOpts []server.Option
	if cfg.Server.StaticDir != "" {
		srvOpts = append(srvOpts, server.WithStaticDir(cfg.Server.StaticDir))
	}
	srv := server.New(cfg.Server.Addr(), eng, c, srvOpts...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
