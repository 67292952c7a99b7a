// SPDX-License-Identifier: MIT

package structurate

import (
	"math"
	"strconv"
	"strings"
)

// VersionKey is the reserved top-level key holding the config file version.
const VersionKey = "_config_version"

// Migration upgrades a raw config node by exactly one version.
type Migration interface {
	Migrate(node *Node) error
}

// MigrationFunc adapts a function to Migration.
type MigrationFunc func(node *Node) error

// Migrate implements Migration.
func (f MigrationFunc) Migrate(node *Node) error {
	return f(node)
}

// Versioned is implemented by config types whose layout is versioned.
// Types without it are version 1.
type Versioned interface {
	ConfigVersion() int
}

// Defaulter is implemented by *T to fill default values into a zero T.
type Defaulter interface {
	SetDefaults()
}

// nodeVersion reads VersionKey from node: ints, integral floats and numeric
// strings are accepted, anything else means version 1.
func nodeVersion(node *Node) int {
	switch v := node.Get(VersionKey).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		if v <= math.MaxInt {
			return int(v)
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return 1
}

func codeVersion[T any]() int {
	var zero T
	if v, ok := any(zero).(Versioned); ok {
		return v.ConfigVersion()
	}
	if v, ok := any(&zero).(Versioned); ok {
		return v.ConfigVersion()
	}
	return 1
}
