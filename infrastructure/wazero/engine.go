package wazero

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/CyberFlameGO/lapce/domain/entities"
	derrors "github.com/CyberFlameGO/lapce/domain/errors"
	"github.com/CyberFlameGO/lapce/domain/ports"
	"github.com/CyberFlameGO/lapce/host/registry"
	"github.com/CyberFlameGO/lapce/internal/wasmio"
)

// HostModuleName is the import namespace the proxy's capabilities live
// under. Guests declare imports like (import "lapce" "host_handle_notification").
const HostModuleName = "lapce"

// Engine compiles and instantiates sandboxed extensions.
type Engine struct {
	cache      wazero.CompilationCache
	dispatcher ports.Dispatcher
	registry   ports.NotificationRegistry
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry replaces the default notification registry.
func WithRegistry(r ports.NotificationRegistry) EngineOption {
	return func(e *Engine) {
		e.registry = r
	}
}

// NewEngine creates an engine around the dispatcher every sandbox will
// notify. The compilation cache is created once and shared read-only by all
// instantiations.
func NewEngine(dispatcher ports.Dispatcher, opts ...EngineOption) *Engine {
	e := &Engine{
		cache:      wazero.NewCompilationCache(),
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.Default()
	}
	return e
}

// Close releases the shared compilation cache.
func (e *Engine) Close(ctx context.Context) error {
	return e.cache.Close(ctx)
}

// Sandbox is one running sandboxed extension. The catalog owns it
// exclusively; only the capability bridge closures share its environment.
type Sandbox struct {
	id      entities.PluginID
	desc    entities.PluginDescription
	runtime wazero.Runtime
	module  api.Module
	env     *pluginEnv
}

// ID implements ports.Instance.
func (s *Sandbox) ID() entities.PluginID { return s.id }

// Name implements ports.Instance.
func (s *Sandbox) Name() string { return s.desc.Name }

// Close tears down the instance and everything instantiated in its runtime,
// including the virtual stdio state.
func (s *Sandbox) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// Start brings up one sandboxed extension: compile, virtual stdio, host
// imports, instantiate, then the initialize handshake. Each step is a
// distinct failure point that aborts this extension only; the catalog never
// retries automatically.
func (e *Engine) Start(ctx context.Context, id entities.PluginID, desc entities.PluginDescription) (*Sandbox, error) {
	wasmBytes, err := os.ReadFile(desc.ExecPath)
	if err != nil {
		return nil, &derrors.SandboxError{Plugin: desc.Name, Step: "read", Err: err}
	}

	rt := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithCompilationCache(e.cache))

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "compile", err)
	}

	stdio := wasmio.NewStdio()
	env := &pluginEnv{
		stdio:      stdio,
		dispatcher: e.dispatcher,
		registry:   e.registry,
		plugin:     desc.Name,
	}

	// Baseline OS-emulation imports first, then the proxy's own namespace,
	// so the guest's expected import set is satisfiable.
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "wasi", err)
	}
	if err := instantiateHostModule(ctx, rt, env); err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "host imports", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName(desc.Name).
		WithStdin(stdio.Stdin).
		WithStdout(stdio.Stdout).
		WithStderr(os.Stderr).
		WithStartFunctions())
	if err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "instantiate", err)
	}

	// Reactor-style modules expect _initialize before anything else.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, e.abort(ctx, rt, desc.Name, "_initialize", err)
		}
	}

	initialize := mod.ExportedFunction("initialize")
	if initialize == nil {
		return nil, e.abort(ctx, rt, desc.Name, "initialize", errors.New("missing initialize export"))
	}
	if err := stdio.WriteObject(desc.InitConfiguration()); err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "configuration", err)
	}
	if _, err := initialize.Call(ctx); err != nil {
		return nil, e.abort(ctx, rt, desc.Name, "initialize", err)
	}

	slog.Info("plugin started", "plugin", desc.Name, "id", id, "exec_path", desc.ExecPath)
	return &Sandbox{id: id, desc: desc, runtime: rt, module: mod, env: env}, nil
}

// abort closes the half-built runtime and wraps the step failure.
func (e *Engine) abort(ctx context.Context, rt wazero.Runtime, plugin, step string, err error) error {
	_ = rt.Close(ctx)
	return &derrors.SandboxError{Plugin: plugin, Step: step, Err: err}
}

// instantiateHostModule exposes the capability bridge under the fixed
// namespace. host_handle_notification takes no parameters and returns
// nothing: its payload travels over the instance's stdout channel.
func instantiateHostModule(ctx context.Context, rt wazero.Runtime, env *pluginEnv) error {
	_, err := rt.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, _ api.Module, _ []uint64) {
			env.handleNotification(ctx)
		}), []api.ValueType{}, []api.ValueType{}).
		Export("host_handle_notification").
		Instantiate(ctx)
	return err
}
