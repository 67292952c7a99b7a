// SPDX-License-Identifier: MIT

package structurate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	xglog "github.com/vortex-dev/vortex/internal/log"
	"github.com/vortex-dev/vortex/internal/metrics"
)

type watchState struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch reloads the store whenever its file changes on disk and reports the
// result to onChange. The parent directory is watched so atomic replacements
// are seen. Changes whose content digest matches the last read or written
// bytes (including the store's own writes) are ignored.
//
// Watch returns once the watcher is running; it stops when ctx is done or
// Close is called. Once stopped, the store may be watched again.
//
// onChange runs on the watcher goroutine. It must not call Close or Watch on
// the same store, as both wait for that goroutine; cancel ctx instead.
func (s *Store[T]) Watch(ctx context.Context, onChange func(T, error)) error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watching() {
		return ErrAlreadyWatching
	}

	target, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	st := &watchState{cancel: cancel, done: make(chan struct{})}
	s.watch = st

	s.logger.Info().Str(xglog.FieldEvent, "structurate.watcher_started").Msg("watching config file for changes")
	go s.watchLoop(ctx, watcher, target, st.done, onChange)
	return nil
}

// watching reports whether a watcher loop is still running, releasing the
// state of one that stopped on its own. watchMu must be held.
func (s *Store[T]) watching() bool {
	if s.watch == nil {
		return false
	}
	select {
	case <-s.watch.done:
		s.watch.cancel()
		s.watch = nil
		return false
	default:
		return true
	}
}

// Close stops a running watcher and waits for it to exit.
func (s *Store[T]) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watch == nil {
		return nil
	}
	s.watch.cancel()
	<-s.watch.done
	s.watch = nil
	return nil
}

func (s *Store[T]) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, done chan<- struct{}, onChange func(T, error)) {
	defer close(done)
	defer func() { _ = watcher.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(xglog.FieldEvent, "structurate.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// Write and Create cover in-place editors and atomic renames.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.logger.Debug().
				Str(xglog.FieldEvent, "structurate.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			if timer == nil {
				timer = time.NewTimer(s.opts.debounce)
			} else {
				timer.Reset(s.opts.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.reloadIfChanged(onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "structurate.watcher_error").Msg("config watcher error")
		}
	}
}

func (s *Store[T]) reloadIfChanged(onChange func(T, error)) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Unlock()
		s.logger.Warn().Str(xglog.FieldEvent, "structurate.file_removed").Msg("watched config file disappeared")
		return
	}
	if err == nil && digest(data) == s.digest {
		s.mu.Unlock()
		return
	}
	v, err := s.loadLocked()
	s.mu.Unlock()

	metrics.RecordConfigOp("reload", err)
	if err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "structurate.auto_reload_failed").Msg("automatic config reload failed")
	} else {
		s.logger.Info().Str(xglog.FieldEvent, "structurate.reload_success").Msg("config reloaded")
	}
	if onChange != nil {
		onChange(v, err)
	}
}
