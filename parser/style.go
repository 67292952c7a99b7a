// SPDX-License-Identifier: MIT

package parser

import "fmt"

// Decoration is a text decoration toggled by tags or legacy format codes.
type Decoration int

const (
	Bold Decoration = iota
	Italic
	Underlined
	Strikethrough
	Obfuscated

	decorationCount
)

var decorationNames = [decorationCount]string{"bold", "italic", "underlined", "strikethrough", "obfuscated"}

var decorationCodes = [decorationCount]rune{'l', 'o', 'n', 'm', 'k'}

func (d Decoration) String() string {
	if d < 0 || d >= decorationCount {
		return fmt.Sprintf("Decoration(%d)", int(d))
	}
	return decorationNames[d]
}

// Decorations lists every decoration in serialization order.
func Decorations() []Decoration {
	return []Decoration{Bold, Italic, Underlined, Strikethrough, Obfuscated}
}

func decorationByCode(code rune) (Decoration, bool) {
	for d, c := range decorationCodes {
		if c == code {
			return Decoration(d), true
		}
	}
	return 0, false
}

// DecorationState is unset (inherit), explicitly on or explicitly off.
type DecorationState uint8

const (
	DecorationUnset DecorationState = iota
	DecorationTrue
	DecorationFalse
)

func stateOf(b bool) DecorationState {
	if b {
		return DecorationTrue
	}
	return DecorationFalse
}

// ClickAction names what a client does when text is clicked.
type ClickAction string

const (
	OpenURL         ClickAction = "open_url"
	RunCommand      ClickAction = "run_command"
	SuggestCommand  ClickAction = "suggest_command"
	CopyToClipboard ClickAction = "copy_to_clipboard"
	ChangePage      ClickAction = "change_page"
)

func (a ClickAction) valid() bool {
	switch a {
	case OpenURL, RunCommand, SuggestCommand, CopyToClipboard, ChangePage:
		return true
	}
	return false
}

// ClickEvent is attached to text by the click tag.
type ClickEvent struct {
	Action ClickAction
	Value  string
}

// Style is the formatting a component sets on itself and its children.
// Zero fields inherit from the parent.
type Style struct {
	Color       *Color
	Decorations [decorationCount]DecorationState
	Click       *ClickEvent
	Hover       *Component
	Insertion   string
	Font        string
}

// Decoration returns the state of d.
func (s Style) Decoration(d Decoration) DecorationState {
	return s.Decorations[d]
}

// Has reports whether d is explicitly enabled.
func (s Style) Has(d Decoration) bool {
	return s.Decorations[d] == DecorationTrue
}

// WithColor returns a copy of s using c.
func (s Style) WithColor(c Color) Style {
	s.Color = &c
	return s
}

// WithDecoration returns a copy of s with d set to state.
func (s Style) WithDecoration(d Decoration, state DecorationState) Style {
	s.Decorations[d] = state
	return s
}

// IsZero reports whether s sets nothing.
func (s Style) IsZero() bool {
	return s.Color == nil &&
		s.Decorations == [decorationCount]DecorationState{} &&
		s.Click == nil &&
		s.Hover == nil &&
		s.Insertion == "" &&
		s.Font == ""
}

// Merge returns the effective style of a child with style child inside s.
func (s Style) Merge(child Style) Style {
	out := s
	if child.Color != nil {
		out.Color = child.Color
	}
	for d, st := range child.Decorations {
		if st != DecorationUnset {
			out.Decorations[d] = st
		}
	}
	if child.Click != nil {
		out.Click = child.Click
	}
	if child.Hover != nil {
		out.Hover = child.Hover
	}
	if child.Insertion != "" {
		out.Insertion = child.Insertion
	}
	if child.Font != "" {
		out.Font = child.Font
	}
	return out
}

// legacyEqual compares the parts of two effective styles a legacy string can express.
func legacyEqual(a, b Style) bool {
	if !sameColor(a.Color, b.Color) {
		return false
	}
	for d := range a.Decorations {
		if (a.Decorations[d] == DecorationTrue) != (b.Decorations[d] == DecorationTrue) {
			return false
		}
	}
	return true
}

func sameColor(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
