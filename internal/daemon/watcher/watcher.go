// Package watcher handles file system watching for the daemon.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher watches the settings file for external edits and invokes a
// callback once the file settles.
type Watcher struct {
	log       *slog.Logger
	fsWatcher *fsnotify.Watcher
	path      string
	onChange  func()

	done chan struct{}

	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for path. onChange fires debounced, off the
// caller's goroutine, after the file is written, created, or renamed
// into place.
func New(log *slog.Logger, path string, onChange func()) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		log:       log,
		fsWatcher: fsWatcher,
		path:      filepath.Clean(path),
		onChange:  onChange,
		done:      make(chan struct{}),
		debounce:  make(map[string]*time.Timer),
	}

	return w, nil
}

// Start starts the watcher. The file's directory is watched rather than
// the file itself so editors that replace the file on save stay visible.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()

	return nil
}

// Stop stops the watcher and drops pending debounce timers.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.fsWatcher.Close()

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("settings watcher error", "error", err)
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Accept write, create, and rename events.
	// Rename is critical: atomic writes (write tmp, rename to target)
	// produce Rename events on the target file. This is the standard
	// pattern used by editors.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	if filepath.Clean(event.Name) != w.path {
		return
	}

	w.log.Debug("settings file changed", "op", event.Op.String())
	w.debounceEvent(event.Name, w.onChange)
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	// Cancel existing timer
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	// Create new timer
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
