// Package cmd provides the CLI commands for wren.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wrensearch/wren/internal/config"
	"github.com/wrensearch/wren/internal/logging"
	"github.com/wrensearch/wren/internal/tokenizer"
	"github.com/wrensearch/wren/pkg/version"
)

var (
	cfgPath    string
	cfg        *config.Config
	logCleanup func()
)

// NewRootCmd creates the root command for the wren CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wren",
		Short: "Offline-built, memory-served text search engine",
		Long: `Wren builds a BM25 inverted index over a document corpus offline,
then serves ranked search, keyword suggestion, and snippets from a
long-lived process.

Run 'wren build' against a corpus directory, then 'wren server'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("wren version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "wren.yaml", "Path to the configuration file")
	cmd.PersistentPreRunE = setup
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if logCleanup != nil {
			logCleanup()
		}
	}

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newServerCmd())
	cmd.AddCommand(newServerLiteCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the CLI. Errors are logged here; main only sets the exit
// code.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
	}
	return err
}

// setup loads configuration and logging before any subcommand runs. A
// missing config file degrades to defaults; subcommands validate the
// paths they actually need.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgPath)

	cleanup, logErr := logging.SetupDefault(logging.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.File,
	})
	if logErr != nil {
		return logErr
	}
	logCleanup = cleanup

	if err != nil {
		slog.Warn("config unavailable, using defaults",
			slog.String("path", cfgPath),
			slog.String("error", err.Error()))
	}
	return nil
}

// newTokenizer builds the configured tokenizer: the sego segmenter when
// a dictionary is configured and present, otherwise a whitespace
// tokenizer with the same stop-word set (degraded but functional).
func newTokenizer() tokenizer.Tokenizer {
	tc := cfg.Tokenizer
	if tc.DictPath != "" {
		tok, err := tokenizer.NewSego(tc.DictPath, tc.UserDictPath, tc.StopWordPath)
		if err == nil {
			return tok
		}
		slog.Error("segmenter unavailable, falling back to whitespace tokenizer",
			slog.String("dict_path", tc.DictPath),
			slog.String("error", err.Error()))
	}

	stop := map[string]struct{}{}
	if tc.StopWordPath != "" {
		loaded, err := tokenizer.LoadStopWords(tc.StopWordPath)
		if err != nil {
			slog.Warn("stop words unavailable", slog.String("error", err.Error()))
		}
		stop = loaded
	}
	return tokenizer.NewWhitespace(stop)
}
