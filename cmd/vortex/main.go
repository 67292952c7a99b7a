// SPDX-License-Identifier: MIT

// vortex renders rich text markup and maintains YAML config files.
//
// Usage:
//
//	vortex render --format legacy '<red>Hello <bold>World'
//	vortex yaml fmt --check configs/*.yaml
//	vortex config init
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
