// Package watch reports changes to configuration files.
//
// The parent directory of every file is watched rather than the file itself,
// so editors that save by renaming a temporary file over the original are
// seen too. Bursts of events for the same file are coalesced.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before callbacks run.
const DefaultDebounce = 100 * time.Millisecond

// ErrStopped is returned by Add and Run after Stop.
var ErrStopped = errors.New("watcher stopped")

// Watcher watches configuration files for changes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	debounce  time.Duration
	mu        sync.RWMutex
	files     map[string]struct{}
	dirs      map[string]struct{}
	callbacks []func(string)
	done      chan struct{}
	stopOnce  sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets the quiet period used to coalesce events. Zero disables it.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:   fsw,
		logger:    slog.Default(),
		debounce:  DefaultDebounce,
		mu:        sync.RWMutex{},
		files:     map[string]struct{}{},
		dirs:      map[string]struct{}{},
		callbacks: nil,
		done:      make(chan struct{}),
		stopOnce:  sync.Once{},
	}

	for _, apply := range opts {
		apply(w)
	}

	return w, nil
}

// Add starts watching the file at path. The file does not need to exist yet.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", path, err)
	}

	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(abs)
	if _, watched := w.dirs[dir]; !watched {
		err := w.watcher.Add(dir)
		if err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}

		w.dirs[dir] = struct{}{}
	}

	w.files[abs] = struct{}{}

	w.logger.Debug("watching config file", slog.String("path", abs))

	return nil
}

// OnChange registers a callback receiving the absolute path of a changed file.
func (w *Watcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.callbacks = append(w.callbacks, callback)
}

// Run dispatches change events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // caller's own context error
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("config file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			if w.debounce <= 0 {
				w.notify(filepath.Clean(event.Name))

				continue
			}

			pending[filepath.Clean(event.Name)] = struct{}{}
			timer.Reset(w.debounce)
		case <-timer.C:
			for path := range pending {
				w.notify(path)
			}

			clear(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("config watcher error", slog.Any("error", err))
		}
	}
}

// Stop releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error

	w.stopOnce.Do(func() {
		close(w.done)

		err = w.watcher.Close()
	})

	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}

	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	_, watched := w.files[filepath.Clean(event.Name)]

	return watched
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	callbacks := append([]func(string){}, w.callbacks...)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		callback(path)
	}
}
