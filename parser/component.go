// SPDX-License-Identifier: MIT

package parser

import (
	"strings"
	"unicode/utf8"
)

// Component is a node of rich text: its own text comes first, then its
// children, all rendered with Style layered over the parent's style.
type Component struct {
	Text     string
	Style    Style
	Children []Component
}

// Text returns a component holding s with no style.
func Text(s string) Component {
	return Component{Text: s}
}

// Styled returns a component holding s with style.
func Styled(s string, style Style) Component {
	return Component{Text: s, Style: style}
}

// Append returns c with children added.
func (c Component) Append(children ...Component) Component {
	c.Children = append(append([]Component(nil), c.Children...), children...)
	return c
}

// IsEmpty reports whether c renders no text.
func (c Component) IsEmpty() bool {
	if c.Text != "" {
		return false
	}
	for _, child := range c.Children {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

// PlainText concatenates the text of c and its children.
func (c Component) PlainText() string {
	var b strings.Builder
	c.walk(Style{}, func(text string, _ Style) {
		b.WriteString(text)
	})
	return b.String()
}

// walk visits every text run in order with its effective style.
func (c Component) walk(parent Style, fn func(text string, effective Style)) {
	eff := parent.Merge(c.Style)
	if c.Text != "" {
		fn(c.Text, eff)
	}
	for _, child := range c.Children {
		child.walk(eff, fn)
	}
}

// Span is a run of text with its fully resolved style.
type Span struct {
	Text  string
	Style Style
}

// Spans flattens c into text runs. Adjacent runs with identical colour,
// decorations, click, hover, insertion and font are joined.
func (c Component) Spans() []Span {
	var out []Span
	c.walk(Style{}, func(text string, eff Style) {
		if n := len(out); n > 0 && sameSpanStyle(out[n-1].Style, eff) {
			out[n-1].Text += text
			return
		}
		out = append(out, Span{Text: text, Style: eff})
	})
	return out
}

func sameSpanStyle(a, b Style) bool {
	return sameColor(a.Color, b.Color) &&
		a.Decorations == b.Decorations &&
		a.Click == b.Click &&
		a.Hover == b.Hover &&
		a.Insertion == b.Insertion &&
		a.Font == b.Font
}

func runeCount(c Component) int {
	n := utf8.RuneCountInString(c.Text)
	for _, child := range c.Children {
		n += runeCount(child)
	}
	return n
}
