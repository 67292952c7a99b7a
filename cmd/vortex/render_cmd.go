// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/parser"
)

const (
	formatANSI        = "ansi"
	formatMiniMessage = "minimessage"
	formatLegacy      = "legacy"
	formatPlain       = "plain"
	formatJSON        = "json"
)

type renderFlags struct {
	format          string
	legacyChar      string
	defaultColor    string
	strict          bool
	keepUnknownTags bool
	placeholders    []string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Parse markup and legacy codes and print the result",
		Long: `Parses MiniMessage-style tags and legacy colour codes and prints the
component in the chosen format. Without arguments the text is read from stdin.
Flags override the render section of the CLI config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := root.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := loadCLIConfig(path)
			if err != nil {
				return fmt.Errorf("load config %s: %w", path, err)
			}
			settings, err := f.apply(cmd, cfg.Render)
			if err != nil {
				return err
			}

			text, source, err := renderInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			p, err := buildParser(settings)
			if err != nil {
				return err
			}

			ctx := xglog.ContextWithSource(xglog.ContextWithPath(cmd.Context(), path), source)
			logger := xglog.WithContext(ctx, xglog.WithComponent("cli")).With().
				Str("instance", cfg.InstanceID.String()).
				Logger()
			logger.Debug().Str(xglog.FieldEvent, "cli.render").Str("format", settings.Format).Msg("rendering markup")

			c, err := p.Parse(text)
			if err != nil {
				return err
			}
			out, err := formatComponent(cmd.OutOrStdout(), p, c, settings.Format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&f.format, "format", "", "output format: ansi, minimessage, legacy, plain or json")
	cmd.Flags().StringVar(&f.legacyChar, "legacy-char", "", "legacy formatting character")
	cmd.Flags().StringVar(&f.defaultColor, "default-color", "", "colour for text that does not start with a legacy code (empty disables)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject unbalanced tags")
	cmd.Flags().BoolVar(&f.keepUnknownTags, "keep-unknown-tags", false, "keep unknown tags as literal text")
	cmd.Flags().StringArrayVar(&f.placeholders, "placeholder", nil, "placeholder as key=value, repeatable")
	return cmd
}

// apply overlays the flags the user set on the config defaults.
func (f *renderFlags) apply(cmd *cobra.Command, s renderSettings) (renderSettings, error) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		s.Format = f.format
	}
	if flags.Changed("legacy-char") {
		s.LegacyChar = f.legacyChar
	}
	if flags.Changed("default-color") {
		s.DefaultColor = f.defaultColor
	}
	if flags.Changed("strict") {
		s.Strict = f.strict
	}
	if flags.Changed("keep-unknown-tags") {
		s.KeepUnknownTags = f.keepUnknownTags
	}
	if len(f.placeholders) > 0 {
		merged := make(map[string]string, len(s.Placeholders)+len(f.placeholders))
		for k, v := range s.Placeholders {
			merged[k] = v
		}
		for _, kv := range f.placeholders {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return s, fmt.Errorf("placeholder %q: want key=value", kv)
			}
			merged[k] = v
		}
		s.Placeholders = merged
	}
	if s.Format == "" {
		s.Format = formatANSI
	}
	return s, nil
}

// renderInput returns the text to render and where it came from.
func renderInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), "args", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), "stdin", nil
}

func buildParser(s renderSettings) (*parser.Parser, error) {
	b := parser.NewBuilder().
		Legacy().Char(s.LegacyChar).DefaultColor(s.DefaultColor).
		MiniMessage().Strict(s.Strict).StripUnknownTags(!s.KeepUnknownTags).
		Done()

	keys := make([]string, 0, len(s.Placeholders))
	for k := range s.Placeholders {
		keys = append(keys, k)
	}
	// longer keys first so "<name_full>" is not eaten by "<name>"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("placeholder key is empty")
		}
		b.AddPlaceholder(parser.StaticPlaceholder(k, s.Placeholders[k]))
	}
	return b.Build()
}

func formatComponent(w io.Writer, p *parser.Parser, c parser.Component, format string) (string, error) {
	switch strings.ToLower(format) {
	case formatANSI:
		return parser.RenderANSIWith(lipgloss.NewRenderer(w), c), nil
	case formatMiniMessage:
		return p.From(c), nil
	case formatLegacy:
		return p.ToLegacy(c), nil
	case formatPlain:
		return p.ToPlain(c), nil
	case formatJSON:
		data, err := json.MarshalIndent(jsonSpans(c), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode JSON: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format %q (use ansi, minimessage, legacy, plain or json)", format)
	}
}

type spanJSON struct {
	Text        string     `json:"text"`
	Color       string     `json:"color,omitempty"`
	Decorations []string   `json:"decorations,omitempty"`
	Click       *clickJSON `json:"click,omitempty"`
	Hover       string     `json:"hover,omitempty"`
	Insertion   string     `json:"insertion,omitempty"`
	Font        string     `json:"font,omitempty"`
}

type clickJSON struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

func jsonSpans(c parser.Component) []spanJSON {
	out := []spanJSON{}
	for _, s := range c.Spans() {
		js := spanJSON{Text: s.Text, Insertion: s.Style.Insertion, Font: s.Style.Font}
		if s.Style.Color != nil {
			js.Color = s.Style.Color.Hex()
		}
		for _, d := range parser.Decorations() {
			if s.Style.Has(d) {
				js.Decorations = append(js.Decorations, d.String())
			}
		}
		if s.Style.Click != nil {
			js.Click = &clickJSON{Action: string(s.Style.Click.Action), Value: s.Style.Click.Value}
		}
		if s.Style.Hover != nil {
			js.Hover = s.Style.Hover.PlainText()
		}
		out = append(out, js)
	}
	return out
}
