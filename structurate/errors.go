// SPDX-License-Identifier: MIT

package structurate

import (
	"errors"
	"strings"
)

var (
	// ErrPathRequired is returned by New when no file path is given.
	ErrPathRequired = errors.New("structurate: file path required")
	// ErrNotStruct is returned by New when the config type is not a struct.
	ErrNotStruct = errors.New("structurate: config type must be a struct")
	// ErrUnknownField classifies load failures caused by keys no field maps to.
	// Use errors.Is(err, ErrUnknownField) instead of string matching.
	ErrUnknownField = errors.New("structurate: unknown config field")
	// ErrMigration wraps a failing migration.
	ErrMigration = errors.New("structurate: migration failed")
	// ErrMultipleDocuments is returned when a config file holds more than one YAML document.
	ErrMultipleDocuments = errors.New("structurate: config file contains multiple documents")
	// ErrAlreadyWatching is returned by Watch when a watcher is already running.
	ErrAlreadyWatching = errors.New("structurate: store is already being watched")
	// ErrUnsupportedType is returned when a Go type has no YAML mapping.
	ErrUnsupportedType = errors.New("structurate: unsupported type")
)

// FieldError describes one field that could not be converted.
type FieldError struct {
	Path string // dotted key path, e.g. "server.ports[1]"
	Err  error
}

func (e *FieldError) Error() string {
	return "field " + e.Path + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldErrors collects every field failure of one decode pass.
type FieldErrors []*FieldError

func (fe FieldErrors) Error() string {
	switch len(fe) {
	case 0:
		return "no field errors"
	case 1:
		return fe[0].Error()
	}
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (fe FieldErrors) Unwrap() []error {
	out := make([]error, len(fe))
	for i, e := range fe {
		out[i] = e
	}
	return out
}
