// Package watch re-runs a render whenever the run configuration or a
// configured activity-level file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long events are coalesced before one change
// notification fires. Editors often write files in bursts; one render
// per burst is enough.
const DefaultDebounce = 300 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnError sets the callback invoked on watch errors. Errors are
// advisory; the watcher keeps running.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher monitors the parent directories of a set of files and fires
// a debounced callback when any of them is written, created, or
// renamed. Directories are watched rather than the files themselves so
// atomic-rename writes are still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onError  func(error)
}

// New builds a watcher over the parent directories of paths. Duplicate
// directories collapse to one watch.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close releases the underlying file-system watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is done, invoking onChange once per debounced
// burst of relevant events.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		case <-pending:
			pending = nil
			onChange()
		}
	}
}
