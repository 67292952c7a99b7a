// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/structurate"
)

func newYAMLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yaml",
		Short: "Inspect and format YAML config files",
	}
	cmd.AddCommand(newYAMLInspectCmd(), newYAMLFmtCmd())
	return cmd
}

func newYAMLInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the header, version and key layout of a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(filepath.Clean(path))
			if err != nil {
				return err
			}
			res, err := structurate.NewFileIO().Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			writeInspection(cmd.OutOrStdout(), path, res)
			return nil
		},
	}
}

func writeInspection(w io.Writer, path string, res structurate.ReadResult) {
	fmt.Fprintf(w, "file:    %s\n", path)
	fmt.Fprintf(w, "digest:  %s\n", res.Digest)
	if v := res.Node.Get(structurate.VersionKey); v != nil {
		fmt.Fprintf(w, "version: %v\n", v)
	} else {
		fmt.Fprintln(w, "version: 1 (implicit)")
	}
	if len(res.Header) > 0 {
		fmt.Fprintln(w, "header:")
		for _, line := range res.Header {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w, "keys:")
	writeKeys(w, res.Node, 1)
}

func writeKeys(w io.Writer, n *structurate.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, k := range n.Keys() {
		v := n.Get(k)
		if child, ok := v.(*structurate.Node); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, k)
			writeKeys(w, child, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, k, kindOf(v))
	}
}

func kindOf(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []any:
		return fmt.Sprintf("sequence(%d)", len(t))
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float"
	default:
		return fmt.Sprintf("%T", v)
	}
}

type fmtResult struct {
	path    string
	changed bool
}

func newYAMLFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt [--check] FILE...",
		Short: "Rewrite config files in canonical form",
		Long: `Rewrites each file the way structurate writes config files: block style,
two-space indent, original key order and the leading comment header kept.
With --check nothing is written and the command fails if a file would change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := formatFiles(cmd, args, check)
			if err != nil {
				return err
			}
			var pending []string
			for _, r := range results {
				if !r.changed {
					continue
				}
				if check {
					pending = append(pending, r.path)
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", r.path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", r.path)
				}
			}
			if len(pending) > 0 {
				return fmt.Errorf("%d file(s) need formatting", len(pending))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "report unformatted files without rewriting them")
	return cmd
}

func formatFiles(cmd *cobra.Command, paths []string, check bool) ([]fmtResult, error) {
	fio := structurate.NewFileIO()
	logger := xglog.WithComponent("cli")
	results := make([]fmtResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := formatFile(fio, path, check)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fmtResult{path: path, changed: changed}
			fileLogger := xglog.WithContext(xglog.ContextWithPath(ctx, path), logger)
			fileLogger.Debug().
				Str(xglog.FieldEvent, "cli.yaml_fmt").
				Bool("changed", changed).
				Msg("checked file")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func formatFile(fio *structurate.FileIO, path string, check bool) (bool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false, err
	}
	res, err := fio.Decode(data)
	if err != nil {
		return false, err
	}
	formatted, err := fio.Encode(res.Node, res.Header)
	if err != nil {
		return false, err
	}
	if bytes.Equal(data, formatted) {
		return false, nil
	}
	if check {
		return true, nil
	}
	if _, err := fio.WriteWithHeader(path, res.Node, res.Header); err != nil {
		return false, err
	}
	return true, nil
}
