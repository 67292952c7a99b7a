// SPDX-License-Identifier: MIT

package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	xglog "github.com/vortex-dev/vortex/internal/log"
)

// Builder configures a Parser. The zero value is not ready; use NewBuilder.
//
//	p, err := parser.NewBuilder().
//		Legacy().Char("&").DefaultColor("gray").
//		MiniMessage().Strict(true).
//		Build()
type Builder struct {
	legacyChar         rune
	defaultColor       string
	stripUnknownLegacy bool
	strict             bool
	stripUnknownTags   bool
	placeholders       []*Placeholder
	tags               map[string]TagFunc
	tagOrder           []string
	logger             *zerolog.Logger
}

// NewBuilder returns a builder with the defaults: legacy char '§', default
// colour white, unknown legacy codes and unknown tags stripped, lenient parsing.
func NewBuilder() *Builder {
	return &Builder{
		legacyChar:         SectionSign,
		defaultColor:       "WHITE",
		stripUnknownLegacy: true,
		stripUnknownTags:   true,
		tags:               make(map[string]TagFunc),
	}
}

// Legacy switches to legacy code settings.
func (b *Builder) Legacy() *LegacyBuilder { return &LegacyBuilder{parent: b} }

// MiniMessage switches to tag settings.
func (b *Builder) MiniMessage() *MiniMessageBuilder { return &MiniMessageBuilder{parent: b} }

// AddPlaceholder registers p. Nil is ignored.
func (b *Builder) AddPlaceholder(p *Placeholder) *Builder {
	if p != nil {
		b.placeholders = append(b.placeholders, p)
	}
	return b
}

// Tag registers a custom style tag. Names are case-insensitive and may not
// shadow built-in tags; Build reports conflicts.
func (b *Builder) Tag(name string, fn TagFunc) *Builder {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, exists := b.tags[name]; !exists {
		b.tagOrder = append(b.tagOrder, name)
	}
	b.tags[name] = fn
	return b
}

// Logger sets the logger used for debug output about unknown tags.
func (b *Builder) Logger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// Build validates the settings and returns the parser.
func (b *Builder) Build() (*Parser, error) {
	if err := validLegacyChar(b.legacyChar); err != nil {
		return nil, err
	}
	p := &Parser{
		legacyChar:         b.legacyChar,
		defaultColor:       b.defaultColor,
		stripUnknownLegacy: b.stripUnknownLegacy,
		strict:             b.strict,
		stripUnknownTags:   b.stripUnknownTags,
		tags:               make(map[string]TagFunc, len(b.tags)),
		placeholders:       append([]*Placeholder(nil), b.placeholders...),
	}
	if strings.TrimSpace(b.defaultColor) != "" {
		c, err := ParseColor(b.defaultColor)
		if err != nil {
			return nil, fmt.Errorf("default color: %w", err)
		}
		p.rootColor = &c
	}

	var errs []error
	for _, name := range b.tagOrder {
		fn := b.tags[name]
		switch {
		case fn == nil:
			errs = append(errs, fmt.Errorf("%w: tag %q has no handler", ErrTagConflict, name))
		case !validTagName(name):
			errs = append(errs, fmt.Errorf("%w: %q is not a valid tag name", ErrTagConflict, name))
		case isBuiltinTag(name):
			errs = append(errs, fmt.Errorf("%w: %q", ErrTagConflict, name))
		default:
			p.tags[name] = fn
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if b.logger != nil {
		p.logger = *b.logger
	} else {
		p.logger = xglog.WithComponent("parser")
	}
	return p, nil
}

func validLegacyChar(r rune) error {
	switch {
	case r == utf8.RuneError, r == 0:
		return fmt.Errorf("%w: %q", ErrInvalidLegacyChar, r)
	case r == '<', r == '>', r == '\\', r == ':', r == '#', r == '/':
		return fmt.Errorf("%w: %q is markup syntax", ErrInvalidLegacyChar, r)
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		return fmt.Errorf("%w: %q", ErrInvalidLegacyChar, r)
	}
	return nil
}

func validTagName(name string) bool {
	if name == "" || strings.HasPrefix(name, "#") {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

// LegacyBuilder holds the legacy colour code settings of a Builder.
type LegacyBuilder struct {
	parent *Builder
}

// Char sets the legacy character to the first rune of s. Empty s is ignored.
func (l *LegacyBuilder) Char(s string) *LegacyBuilder {
	if s != "" {
		l.parent.legacyChar, _ = utf8.DecodeRuneInString(s)
	}
	return l
}

// DefaultColor sets the colour applied to text that does not start with a
// legacy code: a name, "#rrggbb" or a code character. Empty disables it.
func (l *LegacyBuilder) DefaultColor(color string) *LegacyBuilder {
	l.parent.defaultColor = color
	return l
}

// StripUnknownCodes controls whether unknown codes are removed or kept as text.
func (l *LegacyBuilder) StripUnknownCodes(strip bool) *LegacyBuilder {
	l.parent.stripUnknownLegacy = strip
	return l
}

// MiniMessage switches to tag settings.
func (l *LegacyBuilder) MiniMessage() *MiniMessageBuilder { return l.parent.MiniMessage() }

// Done returns the parent builder.
func (l *LegacyBuilder) Done() *Builder { return l.parent }

// Build builds the parser.
func (l *LegacyBuilder) Build() (*Parser, error) { return l.parent.Build() }

// MiniMessageBuilder holds the tag settings of a Builder.
type MiniMessageBuilder struct {
	parent *Builder
}

// Strict makes unbalanced tags and reset tags parse errors.
func (m *MiniMessageBuilder) Strict(strict bool) *MiniMessageBuilder {
	m.parent.strict = strict
	return m
}

// StripUnknownTags controls whether unknown tags are removed or kept as text.
func (m *MiniMessageBuilder) StripUnknownTags(strip bool) *MiniMessageBuilder {
	m.parent.stripUnknownTags = strip
	return m
}

// Legacy switches to legacy code settings.
func (m *MiniMessageBuilder) Legacy() *LegacyBuilder { return m.parent.Legacy() }

// Done returns the parent builder.
func (m *MiniMessageBuilder) Done() *Builder { return m.parent }

// Build builds the parser.
func (m *MiniMessageBuilder) Build() (*Parser, error) { return m.parent.Build() }
