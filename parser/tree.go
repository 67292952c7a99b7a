// SPDX-License-Identifier: MIT

package parser

import (
	"errors"

	"golang.org/x/text/unicode/norm"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/internal/metrics"
)

// frame is an open tag or legacy code on the build stack.
type frame struct {
	name    string // canonical tag name; empty for the root and legacy frames
	legacy  bool
	pos     int
	src     string
	comp    Component
	painter painter
}

type treeBuilder struct {
	p     *Parser
	stack []*frame
}

// parseMarkup builds the component tree for src. A non-nil root colours the
// root component.
func (p *Parser) parseMarkup(src string, root *Color) (Component, error) {
	rootFrame := &frame{}
	if root != nil {
		col := *root
		rootFrame.comp.Style.Color = &col
	}
	tb := &treeBuilder{p: p, stack: []*frame{rootFrame}}

	lx := lexer{src: src, legacy: p.legacyChar, stripLegacy: p.stripUnknownLegacy}
	for _, tok := range lx.tokens() {
		if err := tb.consume(tok); err != nil {
			return Component{}, err
		}
	}
	if err := tb.finish(); err != nil {
		return Component{}, err
	}
	return rootFrame.comp, nil
}

func (tb *treeBuilder) consume(tok token) error {
	switch tok.kind {
	case tokText:
		tb.text(tok.src)
	case tokLegacy:
		tb.legacyCode(tok)
	case tokOpen:
		return tb.open(tok)
	case tokClose:
		return tb.close(tok)
	}
	return nil
}

func (tb *treeBuilder) top() *frame {
	return tb.stack[len(tb.stack)-1]
}

func (tb *treeBuilder) push(f *frame) {
	tb.stack = append(tb.stack, f)
}

// text appends s to the innermost frame, joining it with a preceding
// unstyled run. Joined runs are renormalised to NFC.
func (tb *treeBuilder) text(s string) {
	c := &tb.top().comp
	if len(c.Children) == 0 {
		c.Text = joinText(c.Text, s)
		return
	}
	last := &c.Children[len(c.Children)-1]
	if last.Style.IsZero() && len(last.Children) == 0 {
		last.Text = joinText(last.Text, s)
		return
	}
	c.Children = append(c.Children, Component{Text: s})
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	return norm.NFC.String(a + b)
}

func (tb *treeBuilder) open(tok token) error {
	res, err := tb.p.resolveTag(tok)
	if err != nil {
		if errors.Is(err, errUnknownTag) || !tb.p.strict {
			tb.unknown(tok)
			return nil
		}
		return &ParseError{Pos: tok.pos, Tag: tok.src, Err: err}
	}

	switch res.kind {
	case tagReset:
		if tb.p.strict {
			return &ParseError{Pos: tok.pos, Tag: tok.src, Err: ErrResetInStrict}
		}
		tb.popTo(1)
	case tagNewline:
		tb.text("\n")
	default:
		if tok.selfClose {
			return nil
		}
		tb.push(&frame{
			name:    res.name,
			pos:     tok.pos,
			src:     tok.src,
			comp:    Component{Style: res.style},
			painter: res.painter,
		})
	}
	return nil
}

func (tb *treeBuilder) close(tok token) error {
	name := canonicalTag(tok.name)
	if !tb.p.isKnownClose(name) {
		tb.unknown(tok)
		return nil
	}
	if name == "br" || name == "reset" {
		return nil
	}

	idx := -1
	for i := len(tb.stack) - 1; i >= 1; i-- {
		if f := tb.stack[i]; !f.legacy && f.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		if tb.p.strict {
			return &ParseError{Pos: tok.pos, Tag: tok.src, Err: ErrUnmatchedClose}
		}
		return nil
	}
	if tb.p.strict {
		for _, f := range tb.stack[idx+1:] {
			if !f.legacy {
				return &ParseError{Pos: tok.pos, Tag: tok.src, Err: ErrMismatchedTag}
			}
		}
	}
	tb.popTo(idx)
	return nil
}

// legacyCode applies a colour, format or reset code.
func (tb *treeBuilder) legacyCode(tok token) {
	if tok.hex == nil && tok.code == 'r' {
		tb.closeLegacy()
		return
	}
	var style Style
	if c, ok := legacyColor(tok); ok {
		tb.closeLegacy()
		style = style.WithColor(c)
	} else if d, ok := decorationByCode(tok.code); ok {
		style = style.WithDecoration(d, DecorationTrue)
	} else {
		return
	}
	tb.push(&frame{legacy: true, pos: tok.pos, src: tok.src, comp: Component{Style: style}})
}

func legacyColor(tok token) (Color, bool) {
	if tok.hex != nil {
		return *tok.hex, true
	}
	c, ok := colorsByCode[tok.code]
	return c, ok
}

// closeLegacy pops everything from the outermost open legacy frame upwards.
func (tb *treeBuilder) closeLegacy() {
	for i := 1; i < len(tb.stack); i++ {
		if tb.stack[i].legacy {
			tb.popTo(i)
			return
		}
	}
}

// popTo closes frames until only stack[:idx] remains. The root never closes.
func (tb *treeBuilder) popTo(idx int) {
	if idx < 1 {
		idx = 1
	}
	for len(tb.stack) > idx {
		f := tb.stack[len(tb.stack)-1]
		tb.stack = tb.stack[:len(tb.stack)-1]
		if f.painter != nil {
			paint(&f.comp, f.painter)
		}
		if f.comp.IsEmpty() {
			continue
		}
		parent := &tb.top().comp
		parent.Children = append(parent.Children, f.comp)
	}
}

func (tb *treeBuilder) unknown(tok token) {
	strip := tb.p.stripUnknownTags
	metrics.RecordUnknownTag(strip)
	tb.p.logger.Debug().
		Str(xglog.FieldEvent, "parser.unknown_tag").
		Str(xglog.FieldTag, tok.src).
		Int(xglog.FieldOffset, tok.pos).
		Bool("stripped", strip).
		Msg("unknown markup tag")
	if !strip {
		tb.text(tok.src)
	}
}

func (tb *treeBuilder) finish() error {
	if tb.p.strict {
		for i := len(tb.stack) - 1; i >= 1; i-- {
			if f := tb.stack[i]; !f.legacy {
				return &ParseError{Pos: f.pos, Tag: f.src, Err: ErrUnclosedTag}
			}
		}
	}
	tb.popTo(1)
	return nil
}
