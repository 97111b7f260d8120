// Package buildinfo carries version metadata stamped in at link time.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Overridden with -ldflags "-X .../buildinfo.Version=..." by release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// ModuleVersion returns Version, or the main module version recorded by
// `go install` when no version was stamped.
func ModuleVersion() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// String formats the build metadata for `voucherbook --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", ModuleVersion(), Commit, Date)
}
