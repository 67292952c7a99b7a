// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vortex-dev/vortex/structurate"
)

const cliConfigVersion = 2

// cliConfig is the file behind --config.
type cliConfig struct {
	InstanceID uuid.UUID      `config:"instanceId"`
	Render     renderSettings `config:"render"`
}

func (cliConfig) ConfigVersion() int { return cliConfigVersion }

// renderSettings are the defaults for `vortex render` flags.
type renderSettings struct {
	Format          string            `config:"format"`
	LegacyChar      string            `config:"legacyChar"`
	DefaultColor    string            `config:"defaultColor"`
	Strict          bool              `config:"strict"`
	KeepUnknownTags bool              `config:"keepUnknownTags"`
	Placeholders    map[string]string `config:"placeholders"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		InstanceID: uuid.New(),
		Render: renderSettings{
			Format:       formatANSI,
			LegacyChar:   "§",
			DefaultColor: "white",
			Placeholders: map[string]string{},
		},
	}
}

// Version 1 files kept the render settings at the top level.
var flatRenderKeys = []string{"format", "legacyChar", "defaultColor", "strict", "keepUnknownTags", "placeholders"}

func migrateFlatRenderKeys(n *structurate.Node) error {
	if v := n.Get("render"); v != nil {
		if _, ok := v.(*structurate.Node); !ok {
			return fmt.Errorf("render must be a mapping, got %T", v)
		}
	}
	render := n.Node("render")
	for _, key := range flatRenderKeys {
		if n.Has(key) {
			render.Set(key, n.Get(key))
			n.Remove(key)
		}
	}
	return nil
}

func openCLIConfig(path string, extra ...structurate.Option) (*structurate.Store[cliConfig], error) {
	opts := append([]structurate.Option{
		structurate.WithAutoUpdate(false),
		structurate.WithDefaults(defaultCLIConfig),
		structurate.WithMigration(2, structurate.MigrationFunc(migrateFlatRenderKeys)),
	}, extra...)
	return structurate.New[cliConfig](path, opts...)
}

func loadCLIConfig(path string) (cliConfig, error) {
	store, err := openCLIConfig(path)
	if err != nil {
		return cliConfig{}, err
	}
	return store.Load()
}
