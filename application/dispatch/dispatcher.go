// Package dispatch owns the host-side reaction to plugin notifications.
// The language-server registry is the one resource shared by every running
// extension, so it lives behind this package's mutex and nowhere else; the
// lock is held only for the duration of a single forward call.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/CyberFlameGO/lapce/domain/entities"
	"github.com/CyberFlameGO/lapce/domain/ports"
)

// ServerStarter launches a concrete language server. The proxy treats the
// server's lifecycle as an opaque collaborator: it only ever invokes it
// with (exec_path, language_id, options).
type ServerStarter func(ctx context.Context, execPath, languageID string, options json.RawMessage) error

// Dispatcher implements ports.Dispatcher over a mutex-guarded registry of
// running language servers keyed by language id.
type Dispatcher struct {
	start ServerStarter

	mu      sync.Mutex
	servers map[string]string // language id -> exec path
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithServerStarter injects the collaborator that actually launches
// language servers. Without one, started servers are only recorded.
func WithServerStarter(s ServerStarter) Option {
	return func(d *Dispatcher) {
		d.start = s
	}
}

// NewDispatcher creates a Dispatcher with the given options.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{servers: make(map[string]string)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StartLspServer implements ports.Dispatcher. Starting a language that
// already has a server is a no-op, so extensions may ask repeatedly.
func (d *Dispatcher) StartLspServer(ctx context.Context, execPath, languageID string, options json.RawMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, running := d.servers[languageID]; running {
		slog.Debug("lsp server already running", "language_id", languageID)
		return nil
	}
	if entities.IsNull(options) {
		options = nil
	}
	if d.start != nil {
		if err := d.start(ctx, execPath, languageID, options); err != nil {
			return fmt.Errorf("start lsp server for %s: %w", languageID, err)
		}
	}

	d.servers[languageID] = execPath
	slog.Info("lsp server started", "language_id", languageID, "exec_path", execPath)
	return nil
}

// Servers returns a snapshot of the running server registry.
func (d *Dispatcher) Servers() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.servers))
	for k, v := range d.servers {
		out[k] = v
	}
	return out
}

var _ ports.Dispatcher = (*Dispatcher)(nil)
