// SPDX-License-Identifier: MIT

package parser

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderANSI renders c for a terminal using lipgloss's default renderer,
// which adapts colours to the detected terminal profile.
func RenderANSI(c Component) string {
	return RenderANSIWith(lipgloss.DefaultRenderer(), c)
}

// RenderANSIWith renders c with r. Obfuscated text is shown blinking.
func RenderANSIWith(r *lipgloss.Renderer, c Component) string {
	var b strings.Builder
	for _, span := range c.Spans() {
		style := spanStyle(r, span.Style)
		// lipgloss pads multi-line blocks, so lines are rendered one by one.
		for i, line := range strings.Split(span.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

func spanStyle(r *lipgloss.Renderer, s Style) lipgloss.Style {
	st := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if s.Color != nil {
		st = st.Foreground(lipgloss.Color(s.Color.Hex()))
	}
	return st.
		Bold(s.Has(Bold)).
		Italic(s.Has(Italic)).
		Underline(s.Has(Underlined)).
		Strikethrough(s.Has(Strikethrough)).
		Blink(s.Has(Obfuscated))
}
