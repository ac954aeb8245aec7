package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Reload describes a validated config that differs from the one it replaces.
type Reload struct {
	Prev    *Config
	Next    *Config
	Changes Changes
}

// Watcher follows the config file and reports edits that change something.
// Invalid edits and edits that leave the settings as they were are logged
// and dropped, so onReload only sees real changes.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	onReload func(Reload)
	logger   *slog.Logger
	debounce time.Duration

	mu        sync.Mutex
	current   *Config
	timer     *time.Timer
	closeOnce sync.Once
}

func NewWatcher(path string, current *Config, onReload func(Reload), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	// Editors often save by replacing the file, which drops a watch on the
	// file itself.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		fs:       fsWatcher,
		onReload: onReload,
		logger:   logger,
		debounce: reloadDebounce,
		current:  current,
	}, nil
}

// Current returns the last config handed to onReload, or the initial one.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start blocks until ctx is done, then closes the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.touchesConfig(event) {
				w.schedule()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) touchesConfig(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	if event.Has(fsnotify.Remove) {
		w.logger.Debug("config file removed, keeping current settings")
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule coalesces a burst of events into a single reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.reload)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) reload() {
	next, err := LoadFrom(w.path)
	if err != nil {
		w.logger.Error("config edit rejected, keeping current settings",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	prev := w.current
	changes := Diff(prev, next)
	if changes.Any() {
		w.current = next
	}
	w.mu.Unlock()

	if !changes.Any() {
		w.logger.Debug("config file rewritten without changes")
		return
	}

	w.logger.Info("config reloaded",
		slog.Bool("destination", changes.Destination),
		slog.Bool("session", changes.Session),
		slog.Bool("restart_required", changes.Restart))
	w.onReload(Reload{Prev: prev, Next: next, Changes: changes})
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fs.Close()
	})
	return err
}
