// SPDX-License-Identifier: MIT

// Package version carries build metadata for vortex binaries.
package version

import "fmt"

const (
	// Group is the artifact group shared by all vortex packages.
	Group = "dev.vortex"
)

var (
	// Version is the release version, overridable via ldflags.
	Version = "1.0.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats version metadata for `vortex version`.
func String() string {
	return fmt.Sprintf("%s/vortex %s (commit %s, built %s)", Group, Version, Commit, Date)
}
