// SPDX-License-Identifier: MIT

package structurate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/internal/metrics"
)

// Store binds a config struct T to one YAML file.
//
// Load, Save, Reload and Update are serialised by an internal mutex, so a
// Store may be shared between goroutines.
type Store[T any] struct {
	path   string
	opts   options
	mapper *Mapper
	io     *FileIO
	logger zerolog.Logger

	codeVersion int
	defaults    func() T

	mu      sync.Mutex
	header  []string
	current T
	loaded  bool
	digest  string

	watchMu sync.Mutex
	watch   *watchState
}

// New creates a store for path. T must be a struct type.
func New[T any](path string, opts ...Option) (*Store[T], error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	if t := reflect.TypeFor[T](); t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	s := &Store[T]{
		path:        path,
		opts:        o,
		mapper:      NewMapper(),
		io:          NewFileIO(),
		codeVersion: codeVersion[T](),
	}
	if o.logger != nil {
		s.logger = *o.logger
	} else {
		s.logger = xglog.WithComponent("structurate")
	}
	s.logger = s.logger.With().Str(xglog.FieldPath, path).Logger()

	if o.defaults != nil {
		fn, ok := o.defaults.(func() T)
		if !ok {
			return nil, fmt.Errorf("defaults factory has type %T, want func() %s", o.defaults, reflect.TypeFor[T]())
		}
		s.defaults = fn
	}
	for _, register := range o.register {
		register(s.mapper)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store[T]) Path() string { return s.path }

// Mapper exposes the store's mapper so adapters can be registered after construction.
func (s *Store[T]) Mapper() *Mapper { return s.mapper }

// CodeVersion is the layout version T declares through Versioned.
func (s *Store[T]) CodeVersion() int { return s.codeVersion }

// Header returns the comment header kept from the last read.
func (s *Store[T]) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Current returns the last loaded or saved value.
func (s *Store[T]) Current() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.loaded
}

// Load reads the file, migrates it to the code version, fills in defaults and
// decodes it into T. With auto-update enabled the merged result is written back.
func (s *Store[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.loadLocked()
	metrics.RecordConfigOp("load", err)
	return v, err
}

// Reload loads the file again, replacing the cached header when it succeeds.
func (s *Store[T]) Reload() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.loadLocked()
	metrics.RecordConfigOp("reload", err)
	return v, err
}

// Save writes v to the file, stamped with the code version.
func (s *Store[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded && s.opts.preserveComments {
		// Keep an existing header even when nothing was loaded yet.
		if h, err := s.io.ReadHeader(s.path); err == nil {
			s.header = h
		}
	}
	err := s.saveLocked(v)
	metrics.RecordConfigOp("save", err)
	return err
}

// Update applies fn to a copy of the current value, loading the file first
// if nothing was loaded yet. The result becomes current; with auto-save it
// is also written to disk. If fn fails nothing changes.
func (s *Store[T]) Update(fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if _, err := s.loadLocked(); err != nil {
			var zero T
			return zero, err
		}
	}
	next := s.current
	if err := fn(&next); err != nil {
		return s.current, err
	}
	if s.opts.autoSave {
		err := s.saveLocked(next)
		metrics.RecordConfigOp("save", err)
		if err != nil {
			return s.current, err
		}
		return next, nil
	}
	s.current = next
	return next, nil
}

func (s *Store[T]) loadLocked() (T, error) {
	var zero T

	rr, err := s.io.ReadWithHeader(s.path)
	if err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "structurate.read_failed").Msg("failed to read config file")
		return zero, fmt.Errorf("read config: %w", err)
	}
	var header []string
	if s.opts.preserveComments {
		header = rr.Header
	}
	raw := rr.Node

	if err := s.migrate(raw); err != nil {
		return zero, err
	}

	if s.opts.failOnUnknownFields {
		if unknown := s.mapper.unknownKeys(raw, reflect.TypeFor[T](), ""); len(unknown) > 0 {
			return zero, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
		}
	}

	obj := s.newDefaults()
	defaultNode, err := s.mapper.Encode(&obj)
	if err != nil {
		return zero, fmt.Errorf("encode defaults: %w", err)
	}
	mergeDefaults(raw, defaultNode)

	if err := s.mapper.Decode(raw, &obj); err != nil {
		var fe FieldErrors
		if !errors.As(err, &fe) || s.opts.failOnValidationErrors {
			return zero, fmt.Errorf("decode config: %w", err)
		}
		metrics.RecordFieldErrors(len(fe))
		for _, e := range fe {
			s.logger.Warn().
				Err(e.Err).
				Str(xglog.FieldEvent, "structurate.field_invalid").
				Str(xglog.FieldField, e.Path).
				Msg("config field could not be decoded, keeping default")
		}
	}

	if s.opts.autoUpdate {
		if err := s.writeLocked(obj, header); err != nil {
			return zero, err
		}
	} else {
		s.digest = rr.Digest
	}

	s.header = header
	s.current = obj
	s.loaded = true
	s.logger.Debug().
		Str(xglog.FieldEvent, "structurate.load_success").
		Int(xglog.FieldCodeVersion, s.codeVersion).
		Msg("config loaded")
	return obj, nil
}

// migrate upgrades raw in place from its file version to the code version.
func (s *Store[T]) migrate(raw *Node) error {
	current := nodeVersion(raw)
	target := s.codeVersion
	switch {
	case current > target:
		s.logger.Warn().
			Str(xglog.FieldEvent, "structurate.version_ahead").
			Int(xglog.FieldFileVersion, current).
			Int(xglog.FieldCodeVersion, target).
			Msg("config file is newer than the code reading it")
		return nil
	case current == target:
		return nil
	}

	for v := current + 1; v <= target; v++ {
		mig, ok := s.opts.migrations[v]
		if !ok {
			continue
		}
		if err := mig.Migrate(raw); err != nil {
			s.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "structurate.migration_failed").
				Int(xglog.FieldToVersion, v).
				Msg("config migration failed")
			return fmt.Errorf("%w: to version %d: %w", ErrMigration, v, err)
		}
		metrics.RecordMigration(v)
		s.logger.Info().
			Str(xglog.FieldEvent, "structurate.migrated").
			Int(xglog.FieldToVersion, v).
			Msg("config migrated")
	}
	raw.Set(VersionKey, target)
	return nil
}

func (s *Store[T]) saveLocked(v T) error {
	if err := s.writeLocked(v, s.header); err != nil {
		return err
	}
	s.current = v
	s.loaded = true
	return nil
}

func (s *Store[T]) writeLocked(v T, header []string) error {
	node, err := s.mapper.Encode(&v)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	node.Set(VersionKey, s.codeVersion)

	if !s.opts.preserveComments {
		header = nil
	}
	d, err := s.io.WriteWithHeader(s.path, node, header)
	if err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "structurate.write_failed").Msg("failed to write config file")
		return fmt.Errorf("write config: %w", err)
	}
	s.digest = d
	s.logger.Debug().
		Str(xglog.FieldEvent, "structurate.write_success").
		Str(xglog.FieldDigest, d).
		Msg("config written")
	return nil
}

func (s *Store[T]) newDefaults() T {
	if s.defaults != nil {
		return s.defaults()
	}
	var v T
	if d, ok := any(&v).(Defaulter); ok {
		d.SetDefaults()
	}
	return v
}
