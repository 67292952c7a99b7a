// SPDX-License-Identifier: MIT

package structurate

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Store.
type Option func(*options) error

type options struct {
	autoSave               bool
	autoUpdate             bool
	preserveComments       bool
	failOnValidationErrors bool
	failOnUnknownFields    bool
	debounce               time.Duration
	logger                 *zerolog.Logger
	defaults               any // func() T, checked in New
	migrations             map[int]Migration
	register               []func(*Mapper)
}

func defaultOptions() options {
	return options{
		autoUpdate:       true,
		preserveComments: true,
		debounce:         500 * time.Millisecond,
		migrations:       make(map[int]Migration),
	}
}

// WithAutoSave makes Update persist every change immediately.
func WithAutoSave(b bool) Option {
	return func(o *options) error { o.autoSave = b; return nil }
}

// WithAutoUpdate controls whether Load rewrites the file with the merged,
// migrated result. Enabled by default.
func WithAutoUpdate(b bool) Option {
	return func(o *options) error { o.autoUpdate = b; return nil }
}

// WithPreserveComments keeps the file's leading comment block across writes.
// Enabled by default.
func WithPreserveComments(b bool) Option {
	return func(o *options) error { o.preserveComments = b; return nil }
}

// WithFailOnValidationErrors makes Load fail on any field that cannot be
// decoded instead of logging it and keeping the default.
func WithFailOnValidationErrors(b bool) Option {
	return func(o *options) error { o.failOnValidationErrors = b; return nil }
}

// WithFailOnUnknownFields makes Load reject keys that map to no field.
func WithFailOnUnknownFields(b bool) Option {
	return func(o *options) error { o.failOnUnknownFields = b; return nil }
}

// WithDebounce sets how long Watch waits for a burst of file events to settle.
func WithDebounce(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("debounce must be >= 0, got %s", d)
		}
		o.debounce = d
		return nil
	}
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) error { o.logger = &l; return nil }
}

// WithMigration registers m to upgrade files from toVersion-1 to toVersion.
func WithMigration(toVersion int, m Migration) Option {
	return func(o *options) error {
		if toVersion < 2 {
			return fmt.Errorf("migration target version must be >= 2, got %d", toVersion)
		}
		if m == nil {
			return fmt.Errorf("migration to version %d is nil", toVersion)
		}
		o.migrations[toVersion] = m
		return nil
	}
}

// WithDefaults supplies the default value factory. It takes precedence over Defaulter.
func WithDefaults[T any](fn func() T) Option {
	return func(o *options) error {
		if fn == nil {
			return fmt.Errorf("defaults factory is nil")
		}
		o.defaults = fn
		return nil
	}
}

// WithTypeAdapter registers a for every value of type A.
func WithTypeAdapter[A any](a TypeAdapter[A]) Option {
	return func(o *options) error {
		o.register = append(o.register, func(m *Mapper) { RegisterAdapter(m, a) })
		return nil
	}
}

// WithConverter registers a under id for `config:"key,converter=id"` fields.
func WithConverter[A any](id string, a TypeAdapter[A]) Option {
	return func(o *options) error {
		if id == "" {
			return fmt.Errorf("converter id is empty")
		}
		o.register = append(o.register, func(m *Mapper) { RegisterConverter(m, id, a) })
		return nil
	}
}
