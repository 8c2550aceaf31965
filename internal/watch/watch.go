// Package watch enriches the directory model with external-change
// detection: a pane's cwd is watched via fsnotify, and changes originating
// outside TFM's own file-ops handlers are translated into the same
// explicit-invalidation reload action rename/delete handling already uses.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/consistent-milk12/fsm-sub001/internal/action"
)

// defaultDebounce coalesces a burst of fsnotify events (e.g. an editor's
// write-then-rename save sequence) into a single reload.
const defaultDebounce = 150 * time.Millisecond

// Watcher posts a debounced ReloadPath action whenever a watched directory
// changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	out      chan<- action.Action
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New wraps an fsnotify.Watcher, posting reload actions to out.
func New(out chan<- action.Action) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		out:      out,
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Watch starts watching dir for changes.
func (w *Watcher) Watch(dir string) error {
	return w.fsw.Add(dir)
}

// Unwatch stops watching dir.
func (w *Watcher) Unwatch(dir string) error {
	return w.fsw.Remove(dir)
}

// Close stops the underlying fsnotify watcher and cancels any pending
// debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.fsw.Close()
}

// Run consumes fsnotify events until ctx is cancelled, debouncing
// per-directory and posting action.ReloadPath once the debounce window
// elapses with no further activity on that directory.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.schedule(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[watch] fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	dir := filepath.Dir(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[dir]; ok {
		timer.Stop()
	}
	w.pending[dir] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()
		select {
		case w.out <- action.ReloadPath(dir):
		default:
			slog.Warn("[watch] reload action dropped, channel full", "dir", dir)
		}
	})
}

