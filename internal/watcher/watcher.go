// Package watcher provides file system watching with debouncing for the rule
// and config files.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/cmdhl/internal/log"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a set of files and sends one notification per burst of
// changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	names     map[string]struct{}
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	// Paths are the files to watch. Their directories are watched so that
	// editors replacing the file by rename are still seen.
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: DefaultDebounce,
	}
}

// New creates a new file watcher.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.DebounceDur
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	names := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		names[filepath.Clean(p)] = struct{}{}
	}

	return &Watcher{
		fsWatcher: fsw,
		paths:     cfg.Paths,
		names:     names,
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the directories of the configured files.
// Returns a channel that receives a signal when any of them changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	seen := make(map[string]bool)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		log.Debug(log.CatWatcher, "watching directory", "dir", dir)
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatcher, "file event", "name", event.Name, "op", event.Op.String())

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// Editors often save by writing a new file and renaming it into place,
	// which shows up as Create on the watched name.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	_, ok := w.names[filepath.Clean(event.Name)]
	return ok
}
