// Package version provides build and version information for wren.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current version, set via ldflags at release time:
//
//	-X github.com/wrensearch/wren/pkg/version.Version=v1.2.3
var Version = "dev"

// Commit is the git commit hash, set via ldflags.
var Commit = "unknown"

// Date is the build date, set via ldflags.
var Date = "unknown"

// String returns the full version line.
func String() string {
	return fmt.Sprintf("wren %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, runtime.Version())
}
