// Package watcher hot-reloads the plugin catalog when the plugins directory
// changes on disk. Event bursts are debounced into a single
// reload-and-restart cycle.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/CyberFlameGO/lapce/host/catalog"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher triggers catalog reloads from filesystem events.
type Watcher struct {
	catalog  *catalog.Catalog
	fsw      *fsnotify.Watcher
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the event coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New watches dir and drives reloads on c. The caller runs the loop with
// Run and releases the watch with Close.
func New(c *catalog.Catalog, dir string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{catalog: c, fsw: fsw, debounce: defaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done, coalescing filesystem events into
// reload-and-restart cycles. Watch errors are logged, never fatal.
func (w *Watcher) Run(ctx context.Context) {
	var reloadAt <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
				!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("plugins directory changed", "path", ev.Name, "op", ev.Op.String())
			reloadAt = time.After(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("plugins watcher error", "error", err)
		case <-reloadAt:
			reloadAt = nil
			w.catalog.Reload(ctx)
			w.catalog.StartAll(ctx)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
