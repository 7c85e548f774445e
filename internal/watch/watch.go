// Package watch re-runs an action when local input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of events from a single save.
const DefaultDebounce = 100 * time.Millisecond

// Options configures Files.
type Options struct {
	// Debounce is the quiet period before the action runs (optional).
	Debounce time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Files watches paths and calls fn with the changed path after each write or
// create settles. Calls to fn never overlap. Errors from fn are logged, not
// returned. Files blocks until ctx is cancelled and any running call to fn has
// finished.
//
// Parent directories are watched rather than the files themselves so that
// editors replacing a file by rename are still seen.
func Files(ctx context.Context, paths []string, fn func(path string) error, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	wanted := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		wanted[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var (
		mu       sync.Mutex // guards timers
		running  sync.Mutex // serializes fn
		inflight sync.WaitGroup
	)
	timers := make(map[string]*time.Timer)
	// Every scheduled timer is released exactly once: by a successful Stop
	// or by its callback.
	defer func() {
		mu.Lock()
		for _, t := range timers {
			if t.Stop() {
				inflight.Done()
			}
		}
		mu.Unlock()
		inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := wanted[name]; !ok {
				continue
			}

			mu.Lock()
			if t, ok := timers[name]; ok && t.Stop() {
				inflight.Done()
			}
			inflight.Add(1)
			timers[name] = time.AfterFunc(debounce, func() {
				defer inflight.Done()
				running.Lock()
				defer running.Unlock()
				if ctx.Err() != nil {
					return
				}
				logger.Debug("file changed", slog.String("file", name))
				if err := fn(name); err != nil {
					logger.Error("action failed", slog.String("file", name), slog.Any("error", err))
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.Any("error", err))
		}
	}
}
