// SPDX-License-Identifier: MIT

package parser

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/internal/metrics"
)

// SectionSign is the default legacy formatting character.
const SectionSign = '§'

// Parser turns markup and legacy colour codes into Components and back.
// Settings are fixed at Build time; placeholders may be added at any time.
// A Parser is safe for concurrent use.
type Parser struct {
	legacyChar         rune
	defaultColor       string
	rootColor          *Color
	stripUnknownLegacy bool
	strict             bool
	stripUnknownTags   bool
	tags               map[string]TagFunc
	logger             zerolog.Logger

	mu           sync.RWMutex
	placeholders []*Placeholder
}

// Default returns a parser with the default settings.
func Default() *Parser {
	p, err := NewBuilder().Build()
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parser) LegacyChar() rune         { return p.legacyChar }
func (p *Parser) DefaultColor() string     { return p.defaultColor }
func (p *Parser) StripUnknownLegacy() bool { return p.stripUnknownLegacy }
func (p *Parser) Strict() bool             { return p.strict }
func (p *Parser) StripUnknownTags() bool   { return p.stripUnknownTags }

// Placeholders returns the registered placeholders in order.
func (p *Parser) Placeholders() []*Placeholder {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Placeholder(nil), p.placeholders...)
}

// AddPlaceholder registers ph for later parses. Nil is ignored.
func (p *Parser) AddPlaceholder(ph *Placeholder) *Parser {
	if ph == nil {
		return p
	}
	p.mu.Lock()
	p.placeholders = append(p.placeholders, ph)
	p.mu.Unlock()
	return p
}

// Parse converts text into a component tree. '&' before a valid legacy code
// is treated as the legacy character; placeholders are substituted before
// tags are read, so replacements may contain markup. In non-strict mode any
// input parses without error.
func (p *Parser) Parse(text string) (Component, error) {
	c, err := p.parse(text)
	metrics.RecordParse(err)
	if err != nil {
		p.logger.Debug().Err(err).Str(xglog.FieldEvent, "parser.parse_failed").Msg("markup rejected")
	}
	return c, err
}

func (p *Parser) parse(text string) (Component, error) {
	if text == "" {
		return Component{}, nil
	}
	text = translateAmpersands(text, p.legacyChar)

	var root *Color
	if p.rootColor != nil && !strings.HasPrefix(text, string(p.legacyChar)) {
		root = p.rootColor
	}
	return p.parseMarkup(p.applyPlaceholders(text), root)
}

func (p *Parser) applyPlaceholders(text string) string {
	for _, ph := range p.Placeholders() {
		text = strings.ReplaceAll(text, ph.String(), ph.Replacement())
	}
	return text
}

// ToPlain returns the text of c without any formatting.
func (p *Parser) ToPlain(c Component) string {
	return c.PlainText()
}
