// SPDX-License-Identifier: MIT

// Package structurate binds Go structs to YAML configuration files.
//
// A Store[T] reads a file into an ordered Node, upgrades it through
// registered migrations keyed on the reserved "_config_version" key, fills
// in missing keys from T's defaults and decodes the result into T. Writes go
// through an atomic rename and keep the file's leading comment block.
//
//	type Config struct {
//		Listen  string        `config:"listen"`
//		Timeout time.Duration `config:"timeout"`
//	}
//
//	func (c *Config) SetDefaults() { c.Listen = ":8080"; c.Timeout = 5 * time.Second }
//
//	store, err := structurate.New[Config]("config.yaml")
//	cfg, err := store.Load()
package structurate
