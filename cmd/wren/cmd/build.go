package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wrensearch/wren/internal/builder"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the index, dictionary, and page library from the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return builder.Run(cfg, newTokenizer())
		},
	}
}
