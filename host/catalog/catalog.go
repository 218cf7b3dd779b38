// Package catalog owns the set of known extensions and the set of running
// instances. It drives discovery, identity assignment and startup; every
// per-plugin failure is logged and isolated so one bad extension never
// blocks the rest.
package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/CyberFlameGO/lapce/application/config"
	"github.com/CyberFlameGO/lapce/domain/entities"
	"github.com/CyberFlameGO/lapce/domain/ports"
	"github.com/CyberFlameGO/lapce/host/registry"
	"github.com/CyberFlameGO/lapce/infrastructure/parser"
	"github.com/CyberFlameGO/lapce/infrastructure/process"
	"github.com/CyberFlameGO/lapce/infrastructure/wazero"
)

// Catalog is the plugin registry: descriptions keyed by name, running
// instances keyed by id. One mutex guards all of it; the filesystem watcher
// reloads from its own goroutine.
type Catalog struct {
	mu         sync.Mutex
	counter    entities.Counter
	items      map[entities.PluginName]entities.PluginDescription
	plugins    map[entities.PluginID]ports.Instance
	pluginsDir string
	loader     ports.ManifestLoader
	registry   ports.NotificationRegistry
	dispatcher ports.Dispatcher
	engine     *wazero.Engine
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPluginsDir overrides the plugins root directory.
func WithPluginsDir(dir string) Option {
	return func(c *Catalog) {
		c.pluginsDir = dir
	}
}

// WithLoader replaces the manifest loader.
func WithLoader(l ports.ManifestLoader) Option {
	return func(c *Catalog) {
		c.loader = l
	}
}

// WithRegistry replaces the notification registry shared by both execution
// strategies.
func WithRegistry(r ports.NotificationRegistry) Option {
	return func(c *Catalog) {
		c.registry = r
	}
}

// WithEngine replaces the sandbox execution engine.
func WithEngine(e *wazero.Engine) Option {
	return func(c *Catalog) {
		c.engine = e
	}
}

// New creates a catalog around the dispatcher that will receive every
// extension's notifications.
func New(dispatcher ports.Dispatcher, opts ...Option) *Catalog {
	c := &Catalog{
		items:      make(map[entities.PluginName]entities.PluginDescription),
		plugins:    make(map[entities.PluginID]ports.Instance),
		pluginsDir: config.DefaultPluginsDir(),
		loader:     parser.NewTomlManifestLoader(),
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = registry.Default()
	}
	if c.engine == nil {
		c.engine = wazero.NewEngine(dispatcher, wazero.WithRegistry(c.registry))
	}
	return c
}

// Load discovers every manifest under the plugins directory and records its
// description. Safe to call repeatedly: it inserts or overwrites by name
// and never touches identifiers or running instances. A later manifest with
// the same name replaces the earlier entry.
func (c *Catalog) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
}

func (c *Catalog) loadLocked() {
	for _, path := range findManifests(c.pluginsDir) {
		desc, err := c.loader.LoadManifest(path)
		if err != nil {
			slog.Error("load manifest failed", "path", path, "error", err)
			continue
		}
		c.items[desc.Name] = *desc
	}
}

// Reload clears all descriptions and drops all running instances, then
// re-runs discovery. Instance cleanup is each execution strategy's own
// teardown; the catalog does not wait for graceful shutdown. Callers follow
// up with StartAll to bring the fresh set up.
func (c *Catalog) Reload(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slog.Info("plugin catalog reloading", "dir", c.pluginsDir)
	for id, inst := range c.plugins {
		if err := inst.Close(ctx); err != nil {
			slog.Warn("close plugin failed", "plugin", inst.Name(), "id", id, "error", err)
		}
	}
	c.plugins = make(map[entities.PluginID]ports.Instance)
	c.items = make(map[entities.PluginName]entities.PluginDescription)
	c.loadLocked()
}

// StartAll starts every discovered extension, sequentially. Each start runs
// to completion, initialization handshake included, before the next begins.
// A failed start is logged and skipped.
func (c *Catalog) StartAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.items))
	for name := range c.items {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		inst, err := c.startPlugin(ctx, c.items[name])
		if err != nil {
			slog.Error("start plugin failed", "plugin", name, "error", err)
			continue
		}
		c.plugins[inst.ID()] = inst
	}
}

// startPlugin picks the execution strategy from the module type: .wasm runs
// sandboxed, anything else as a legacy process.
func (c *Catalog) startPlugin(ctx context.Context, desc entities.PluginDescription) (ports.Instance, error) {
	id := c.counter.Next()
	if strings.EqualFold(filepath.Ext(desc.ExecPath), ".wasm") {
		return c.engine.Start(ctx, id, desc)
	}
	return process.Start(ctx, id, desc, c.dispatcher, c.registry)
}

// NextPluginID mints a fresh, previously unused identifier.
func (c *Catalog) NextPluginID() entities.PluginID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter.Next()
}

// Descriptions returns a snapshot of the name-to-description map.
func (c *Catalog) Descriptions() map[entities.PluginName]entities.PluginDescription {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[entities.PluginName]entities.PluginDescription, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	return out
}

// Instances returns the running instances, ordered by id.
func (c *Catalog) Instances() []ports.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ports.Instance, 0, len(c.plugins))
	for _, inst := range c.plugins {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Close drops every running instance and releases the engine.
func (c *Catalog) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, inst := range c.plugins {
		if err := inst.Close(ctx); err != nil {
			slog.Warn("close plugin failed", "plugin", inst.Name(), "error", err)
		}
	}
	c.plugins = make(map[entities.PluginID]ports.Instance)
	return c.engine.Close(ctx)
}

// findManifests enumerates <dir>/<extension>/manifest.toml paths. The
// enumeration order is filesystem-defined and not guaranteed stable.
func findManifests(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("plugins directory unreadable", "dir", dir, "error", err)
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p := filepath.Join(dir, entry.Name(), parser.ManifestFileName)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}
