// Package main provides the entry point for the wren CLI.
package main

import (
	"os"

	"github.com/wrensearch/wren/cmd/wren/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
