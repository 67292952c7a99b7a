// SPDX-License-Identifier: MIT

// Package parser reads MiniMessage-style markup mixed with legacy colour
// codes into a tree of styled Components and writes Components back out as
// markup, legacy strings, plain text or ANSI terminal output.
//
// Tags look like <red>, <bold>, <!italic>, <#ff8800>, <click:open_url:'https://example.com'>
// and <gradient:red:blue>; they close with </name>. Legacy codes are the
// legacy character (default '§') followed by 0-9, a-f, k-o or r, or by #rrggbb.
// An '&' in front of a valid code is read as the legacy character.
package parser
