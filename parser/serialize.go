// SPDX-License-Identifier: MIT

package parser

import (
	"strings"
	"unicode/utf8"
)

// From serializes c back to markup. Named colours are written by name, other
// colours as hex. With a legacy char other than '§', literal occurrences of
// it in the output are written as '&'. Literal '&' and '§' that would read as
// a code are escaped with a backslash.
func (p *Parser) From(c Component) string {
	var escaped rune
	if p.legacyChar == SectionSign || p.legacyChar == '&' {
		escaped = p.legacyChar
	}
	var b strings.Builder
	writeMarkup(&b, c, escaped)
	out := b.String()
	if p.legacyChar != SectionSign {
		out = strings.ReplaceAll(out, string(p.legacyChar), "&")
	}
	return out
}

func writeMarkup(b *strings.Builder, c Component, legacy rune) {
	closes := openTags(b, c.Style, legacy)
	b.WriteString(escapeMarkup(c.Text, legacy))
	for _, child := range c.Children {
		writeMarkup(b, child, legacy)
	}
	for i := len(closes) - 1; i >= 0; i-- {
		b.WriteString("</")
		b.WriteString(closes[i])
		b.WriteByte('>')
	}
}

// openTags writes the opening tags for s and returns the names to close.
func openTags(b *strings.Builder, s Style, legacy rune) []string {
	var closes []string
	open := func(name, tag string) {
		b.WriteByte('<')
		b.WriteString(tag)
		b.WriteByte('>')
		closes = append(closes, name)
	}

	if s.Color != nil {
		name := s.Color.String()
		open(name, name)
	}
	for _, d := range Decorations() {
		switch s.Decorations[d] {
		case DecorationTrue:
			open(d.String(), d.String())
		case DecorationFalse:
			open(d.String(), "!"+d.String())
		}
	}
	if s.Font != "" {
		open("font", "font:"+quoteArg(s.Font))
	}
	if s.Insertion != "" {
		open("insert", "insert:"+quoteArg(s.Insertion))
	}
	if s.Click != nil {
		open("click", "click:"+string(s.Click.Action)+":"+quoteArg(s.Click.Value))
	}
	if s.Hover != nil {
		var hover strings.Builder
		writeMarkup(&hover, *s.Hover, legacy)
		open("hover", "hover:show_text:"+quoteArg(hover.String()))
	}
	return closes
}

// escapeMarkup escapes '<' and '\\', every legacy char when legacy is set, and
// each '&' that is followed by a code char or ends s.
func escapeMarkup(s string, legacy rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '<' || r == '\\':
			b.WriteByte('\\')
		case legacy != 0 && r == legacy:
			b.WriteByte('\\')
		case r == '&' && startsCode(s[i+size:]):
			b.WriteByte('\\')
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

func startsCode(rest string) bool {
	if rest == "" {
		return true
	}
	c := rest[0]
	return c == '#' || c == 'x' || c == 'X' || isLegacyCode(toLowerASCII(rune(c)))
}

// quoteArg single-quotes s. A backslash is doubled only where lexArg would
// otherwise read it as an escape, so markup escapes such as \& survive.
func quoteArg(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			b.WriteString(`\'`)
		case c == '\\' && (i+1 == len(s) || s[i+1] == '\\' || s[i+1] == '\''):
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// ToLegacy flattens c into a legacy-coded string using the parser's legacy
// char. Every style change writes the colour code (or reset when there is no
// colour) followed by the active format codes; hex colours are written as
// <char>#rrggbb. Click, hover, insertion and font are dropped.
func (p *Parser) ToLegacy(c Component) string {
	var (
		b       strings.Builder
		prev    Style
		started bool
	)
	code := string(p.legacyChar)
	c.walk(Style{}, func(text string, eff Style) {
		if !started || !legacyEqual(prev, eff) {
			writeLegacyStyle(&b, code, eff, started)
			prev, started = eff, true
		}
		b.WriteString(text)
	})
	return b.String()
}

func writeLegacyStyle(b *strings.Builder, code string, eff Style, started bool) {
	switch {
	case eff.Color != nil:
		b.WriteString(code)
		if r, ok := eff.Color.Code(); ok {
			b.WriteRune(r)
		} else {
			b.WriteString(eff.Color.Hex())
		}
	case started:
		b.WriteString(code)
		b.WriteByte('r')
	}
	for _, d := range Decorations() {
		if eff.Has(d) {
			b.WriteString(code)
			b.WriteRune(decorationCodes[d])
		}
	}
}
