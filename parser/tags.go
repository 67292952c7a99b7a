// SPDX-License-Identifier: MIT

package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// TagFunc resolves a custom tag's arguments to the style it opens.
type TagFunc func(args []string) (Style, error)

type tagKind int

const (
	tagStyle tagKind = iota
	tagReset
	tagNewline
	tagGradient
)

type resolvedTag struct {
	kind    tagKind
	name    string
	style   Style
	painter painter
}

var tagAliases = map[string]string{
	"b":         "bold",
	"i":         "italic",
	"em":        "italic",
	"u":         "underlined",
	"st":        "strikethrough",
	"obf":       "obfuscated",
	"colour":    "color",
	"c":         "color",
	"insertion": "insert",
	"newline":   "br",
	"grey":      "gray",
	"dark_grey": "dark_gray",
}

var builtinTags = map[string]struct{}{
	"color": {}, "click": {}, "hover": {}, "insert": {}, "font": {},
	"gradient": {}, "rainbow": {}, "reset": {}, "br": {},
}

func init() {
	for _, name := range decorationNames {
		builtinTags[name] = struct{}{}
	}
	for _, nc := range namedColors {
		builtinTags[nc.name] = struct{}{}
	}
	for alias := range tagAliases {
		builtinTags[alias] = struct{}{}
	}
}

func canonicalTag(name string) string {
	if c, ok := tagAliases[name]; ok {
		return c
	}
	return name
}

func isBuiltinTag(name string) bool {
	if _, ok := builtinTags[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "#")
}

func decorationByName(name string) (Decoration, bool) {
	for d, n := range decorationNames {
		if n == name {
			return Decoration(d), true
		}
	}
	return 0, false
}

// resolveTag maps an opening tag token to its effect. It returns
// errUnknownTag for names nothing handles and an ErrInvalidTagArgument error
// for known tags used wrongly.
func (p *Parser) resolveTag(tok token) (resolvedTag, error) {
	name := canonicalTag(tok.name)
	res := resolvedTag{kind: tagStyle, name: name}
	invalid := func(format string, a ...any) (resolvedTag, error) {
		return resolvedTag{}, fmt.Errorf("%w: %s", ErrInvalidTagArgument, fmt.Sprintf(format, a...))
	}

	if d, ok := decorationByName(name); ok {
		state := stateOf(!tok.negated)
		switch len(tok.args) {
		case 0:
		case 1:
			b, err := strconv.ParseBool(tok.args[0])
			if err != nil || tok.negated {
				return invalid("%s expects true or false, got %q", name, tok.args[0])
			}
			state = stateOf(b)
		default:
			return invalid("%s takes at most one argument", name)
		}
		res.style = res.style.WithDecoration(d, state)
		return res, nil
	}
	if tok.negated {
		return resolvedTag{}, errUnknownTag
	}

	if fn, ok := p.tags[name]; ok {
		style, err := fn(tok.args)
		if err != nil {
			return invalid("%s: %v", name, err)
		}
		res.style = style
		return res, nil
	}

	if c, ok := colorsByName[name]; ok && len(tok.args) == 0 {
		res.style = res.style.WithColor(c)
		return res, nil
	}
	if strings.HasPrefix(name, "#") {
		c, ok := parseHex(name)
		if !ok || len(tok.args) > 0 {
			return resolvedTag{}, errUnknownTag
		}
		res.style = res.style.WithColor(c)
		return res, nil
	}

	switch name {
	case "color":
		if len(tok.args) != 1 {
			return invalid("color takes one argument")
		}
		c, err := ParseColor(tok.args[0])
		if err != nil {
			return invalid("%v", err)
		}
		res.style = res.style.WithColor(c)
	case "click":
		if len(tok.args) < 2 {
			return invalid("click needs an action and a value")
		}
		action := ClickAction(strings.ToLower(tok.args[0]))
		if !action.valid() {
			return invalid("unknown click action %q", tok.args[0])
		}
		res.style.Click = &ClickEvent{Action: action, Value: strings.Join(tok.args[1:], ":")}
	case "hover":
		if len(tok.args) < 2 || strings.ToLower(tok.args[0]) != "show_text" {
			return invalid("hover needs show_text and markup")
		}
		hover, err := p.parseMarkup(strings.Join(tok.args[1:], ":"), nil)
		if err != nil {
			return resolvedTag{}, fmt.Errorf("hover text: %w", err)
		}
		res.style.Hover = &hover
	case "insert":
		if len(tok.args) == 0 {
			return invalid("insert needs text")
		}
		res.style.Insertion = strings.Join(tok.args, ":")
	case "font":
		if len(tok.args) == 0 {
			return invalid("font needs a key")
		}
		res.style.Font = strings.Join(tok.args, ":")
	case "gradient":
		g, err := parseGradient(tok.args)
		if err != nil {
			return invalid("%v", err)
		}
		res.kind, res.painter = tagGradient, g
	case "rainbow":
		r, err := parseRainbow(tok.args)
		if err != nil {
			return invalid("%v", err)
		}
		res.kind, res.painter = tagGradient, r
	case "reset":
		res.kind = tagReset
	case "br":
		res.kind = tagNewline
	default:
		return resolvedTag{}, errUnknownTag
	}
	return res, nil
}

// isKnownClose reports whether a closing tag name could close anything.
func (p *Parser) isKnownClose(name string) bool {
	if _, ok := p.tags[name]; ok {
		return true
	}
	return isBuiltinTag(name)
}
