// SPDX-License-Identifier: MIT

package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokOpen
	tokClose
	tokLegacy
)

type token struct {
	kind tokenKind
	pos  int
	src  string // text, or the tag/code exactly as written

	// tags
	name      string // lower-cased, without the negation mark
	negated   bool
	selfClose bool
	args      []string

	// legacy codes: code is the lower-cased code char, or 0 with hex set
	code rune
	hex  *Color
}

type lexer struct {
	src         string
	legacy      rune
	stripLegacy bool
}

func (l *lexer) tokens() []token {
	var (
		out       []token
		text      strings.Builder
		textStart int
	)
	flush := func(at int) {
		if text.Len() > 0 {
			out = append(out, token{kind: tokText, pos: textStart, src: norm.NFC.String(text.String())})
			text.Reset()
		}
		textStart = at
	}

	src := l.src
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src) && (src[i+1] == '<' || src[i+1] == '\\' || src[i+1] == '&'):
			text.WriteByte(src[i+1])
			i += 2
			continue
		case c == '\\' && l.escapesLegacy(i+1):
			_, size := utf8.DecodeRuneInString(src[i+1:])
			text.WriteString(src[i+1 : i+1+size])
			i += 1 + size
			continue
		case c == '<':
			if tok, next, ok := l.lexTag(i); ok {
				flush(i)
				out = append(out, tok)
				i = next
				textStart = i
				continue
			}
			text.WriteByte(c)
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(src[i:])
		if r == l.legacy {
			tok, next, known := l.lexLegacy(i, size)
			switch {
			case known:
				flush(i)
				out = append(out, tok)
				i = next
				textStart = i
				continue
			case next > i && l.stripLegacy:
				i = next
				continue
			}
		}
		text.WriteString(src[i : i+size])
		i += size
	}
	flush(len(src))
	return out
}

// escapesLegacy reports whether the legacy char starts at i.
func (l *lexer) escapesLegacy(i int) bool {
	if i >= len(l.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.src[i:])
	return r == l.legacy
}

// lexTag scans <name:arg:'quoted arg'>, </name> or <name/> at start.
func (l *lexer) lexTag(start int) (token, int, bool) {
	src := l.src
	tok := token{kind: tokOpen, pos: start}
	i := start + 1
	if i < len(src) && src[i] == '/' {
		tok.kind = tokClose
		i++
	}
	if i < len(src) && src[i] == '!' {
		tok.negated = true
		i++
	}
	nameStart := i
	for i < len(src) && isNameByte(src[i]) {
		i++
	}
	if i == nameStart {
		return token{}, 0, false
	}
	tok.name = strings.ToLower(src[nameStart:i])

	for i < len(src) && src[i] == ':' {
		arg, next, ok := l.lexArg(i + 1)
		if !ok {
			return token{}, 0, false
		}
		tok.args = append(tok.args, arg)
		i = next
	}
	if i < len(src) && src[i] == '/' && tok.kind == tokOpen {
		tok.selfClose = true
		i++
	}
	if i >= len(src) || src[i] != '>' {
		return token{}, 0, false
	}
	tok.src = src[start : i+1]
	return tok, i + 1, true
}

func (l *lexer) lexArg(i int) (string, int, bool) {
	src := l.src
	if i < len(src) && (src[i] == '\'' || src[i] == '"') {
		quote := src[i]
		var b strings.Builder
		for i++; i < len(src); i++ {
			c := src[i]
			if c == '\\' && i+1 < len(src) && (src[i+1] == quote || src[i+1] == '\\') {
				b.WriteByte(src[i+1])
				i++
				continue
			}
			if c == quote {
				return b.String(), i + 1, true
			}
			b.WriteByte(c)
		}
		return "", 0, false
	}
	start := i
	for i < len(src) {
		c := src[i]
		if c == ':' || c == '>' || c == '<' || (c == '/' && i+1 < len(src) && src[i+1] == '>') {
			break
		}
		i++
	}
	if i >= len(src) || src[i] == '<' {
		return "", 0, false
	}
	return src[start:i], i, true
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '#'
}

// lexLegacy scans a code after the legacy char at i. It returns known=false
// with next past the unknown code when the following char is not a code, and
// next=i when the legacy char ends the input.
func (l *lexer) lexLegacy(i, size int) (token, int, bool) {
	src := l.src
	j := i + size
	if j >= len(src) {
		return token{}, i, false
	}
	r, rsize := utf8.DecodeRuneInString(src[j:])
	if r == '#' {
		if c, ok := parseHex(safeSlice(src, j, j+7)); ok {
			return token{kind: tokLegacy, pos: i, src: src[i : j+7], hex: &c}, j + 7, true
		}
	}
	if r == 'x' || r == 'X' {
		if c, next, ok := l.lexBungeeHex(j + 1); ok {
			return token{kind: tokLegacy, pos: i, src: src[i:next], hex: &c}, next, true
		}
	}
	code := toLowerASCII(r)
	if isLegacyCode(code) {
		return token{kind: tokLegacy, pos: i, src: src[i : j+rsize], code: code}, j + rsize, true
	}
	return token{}, j + rsize, false
}

// lexBungeeHex reads six legacy-prefixed hex digits, as in §x§f§f§0§0§0§0.
func (l *lexer) lexBungeeHex(i int) (Color, int, bool) {
	src := l.src
	digits := make([]byte, 0, 7)
	digits = append(digits, '#')
	for n := 0; n < 6; n++ {
		r, size := utf8.DecodeRuneInString(safeSlice(src, i, len(src)))
		if r != l.legacy || i+size >= len(src) || !isHexDigit(src[i+size]) {
			return Color{}, 0, false
		}
		digits = append(digits, src[i+size])
		i += size + 1
	}
	c, ok := parseHex(string(digits))
	return c, i, ok
}

func isLegacyCode(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'k' && r <= 'o' || r == 'r'
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func safeSlice(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

// translateAmpersands rewrites '&' to legacy wherever it starts a valid legacy
// code, hex code or BungeeCord hex sequence. Other ampersands stay literal,
// as does an escaped \&.
func translateAmpersands(s string, legacy rune) string {
	if legacy == '&' || !strings.Contains(s, "&") {
		return s
	}
	code := string(legacy)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '&') {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if s[i] != '&' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		next := s[i+1]
		switch {
		case next == '#' && isHexRun(s, i+2, 6):
			b.WriteString(code)
			b.WriteString(s[i+1 : i+8])
			i += 8
		case (next == 'x' || next == 'X') && isBungeeRun(s, i+2):
			b.WriteString(code)
			b.WriteByte(next)
			for n := 0; n < 6; n++ {
				b.WriteString(code)
				b.WriteByte(s[i+3+2*n])
			}
			i += 14
		case isLegacyCode(toLowerASCII(rune(next))):
			b.WriteString(code)
			b.WriteByte(next)
			i += 2
		default:
			b.WriteByte('&')
			i++
		}
	}
	return b.String()
}

func isHexRun(s string, from, n int) bool {
	if from+n > len(s) {
		return false
	}
	for k := from; k < from+n; k++ {
		if !isHexDigit(s[k]) {
			return false
		}
	}
	return true
}

func isBungeeRun(s string, from int) bool {
	if from+12 > len(s) {
		return false
	}
	for n := 0; n < 6; n++ {
		if s[from+2*n] != '&' || !isHexDigit(s[from+2*n+1]) {
			return false
		}
	}
	return true
}
