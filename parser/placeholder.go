// SPDX-License-Identifier: MIT

package parser

const (
	defaultEntry = "<"
	defaultFinal = ">"
)

// Placeholder replaces entry+key+final in parsed text by the result of a
// replacer, evaluated on every parse. With the default delimiters the
// placeholder "player" matches "<player>".
//
// Setters mutate the placeholder; configure it before handing it to a parser.
type Placeholder struct {
	key      string
	replacer func() string
	entry    string
	final    string
}

// NewPlaceholder creates a placeholder for key. A nil replacer substitutes "".
func NewPlaceholder(key string, replacer func() string) *Placeholder {
	return &Placeholder{key: key, replacer: replacer, entry: defaultEntry, final: defaultFinal}
}

// StaticPlaceholder creates a placeholder that always substitutes value.
func StaticPlaceholder(key, value string) *Placeholder {
	return NewPlaceholder(key, func() string { return value })
}

// WithEntry sets the opening delimiter. Empty values are ignored.
func (p *Placeholder) WithEntry(entry string) *Placeholder {
	if entry != "" {
		p.entry = entry
	}
	return p
}

// WithFinal sets the closing delimiter. Empty values are ignored.
func (p *Placeholder) WithFinal(final string) *Placeholder {
	if final != "" {
		p.final = final
	}
	return p
}

func (p *Placeholder) Key() string   { return p.key }
func (p *Placeholder) Entry() string { return p.entry }
func (p *Placeholder) Final() string { return p.final }

// String returns the text the placeholder matches.
func (p *Placeholder) String() string {
	return p.entry + p.key + p.final
}

// Replacement evaluates the replacer.
func (p *Placeholder) Replacement() string {
	if p.replacer == nil {
		return ""
	}
	return p.replacer()
}
