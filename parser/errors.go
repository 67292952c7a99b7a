// SPDX-License-Identifier: MIT

package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclosedTag is reported in strict mode when input ends with open tags.
	ErrUnclosedTag = errors.New("parser: unclosed tag")
	// ErrMismatchedTag is reported in strict mode when a closing tag skips over other open tags.
	ErrMismatchedTag = errors.New("parser: closing tag does not match the innermost open tag")
	// ErrUnmatchedClose is reported in strict mode for a closing tag with no open counterpart.
	ErrUnmatchedClose = errors.New("parser: closing tag without matching open tag")
	// ErrResetInStrict is reported when a reset tag appears in strict mode.
	ErrResetInStrict = errors.New("parser: reset tag is not allowed in strict mode")
	// ErrInvalidTagArgument is reported in strict mode for a known tag with bad arguments.
	ErrInvalidTagArgument = errors.New("parser: invalid tag argument")
	// ErrInvalidColor is returned by ParseColor and by Build for a bad default colour.
	ErrInvalidColor = errors.New("parser: invalid color")
	// ErrInvalidLegacyChar is returned by Build when the legacy character cannot be used.
	ErrInvalidLegacyChar = errors.New("parser: invalid legacy character")
	// ErrTagConflict is returned by Build when a custom tag is misnamed or shadows a built-in tag.
	ErrTagConflict = errors.New("parser: custom tag conflicts with a built-in tag")

	errUnknownTag = errors.New("unknown tag")
)

// ParseError locates a strict-mode failure in the processed input.
type ParseError struct {
	Pos int    // byte offset of the offending tag
	Tag string // tag source as written, e.g. "</bold>"
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse markup at offset %d: %s: %v", e.Pos, e.Tag, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
