// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	xglog "github.com/vortex-dev/vortex/internal/log"
)

const configEnv = "VORTEX_CONFIG"

type rootOptions struct {
	configPath string
	logLevel   string
	logPretty  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "vortex",
		Short:         "Render rich text markup and maintain YAML config files",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			xglog.Reconfigure(xglog.Config{
				Level:   opts.logLevel,
				Output:  cmd.ErrOrStderr(),
				Service: "vortex-cli",
				Pretty:  opts.logPretty,
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the CLI config file (default $"+configEnv+" or the user config dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.logPretty, "log-pretty", true, "human-readable log output")

	cmd.AddCommand(
		newRenderCmd(opts),
		newYAMLCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// resolveConfigPath picks the flag, then the environment, then the user config dir.
func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	if env := os.Getenv(configEnv); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vortex", "config.yaml"), nil
}
