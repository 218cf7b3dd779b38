package wazero

import (
	"context"
	"log/slog"

	"github.com/CyberFlameGO/lapce/application/dispatch"
	"github.com/CyberFlameGO/lapce/domain/ports"
	"github.com/CyberFlameGO/lapce/internal/wasmio"
)

// pluginEnv is the state every host capability call runs against: the
// instance's virtual stdio plus shared handles to the dispatcher and the
// notification registry. Copies share the underlying pipes and registries,
// so handing one to each capability closure is cheap.
type pluginEnv struct {
	stdio      *wasmio.Stdio
	dispatcher ports.Dispatcher
	registry   ports.NotificationRegistry
	plugin     string
}

// handleNotification is the host_handle_notification capability. The guest
// frames a notification on its stdout and then calls this with no
// arguments. This is the trust boundary: malformed payloads are logged and
// dropped, and nothing a guest sends may take the host down.
func (env *pluginEnv) handleNotification(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notification handler panicked", "plugin", env.plugin, "panic", r)
		}
	}()

	frame, err := env.stdio.ReadFrame()
	if err != nil {
		slog.Warn("no notification frame", "plugin", env.plugin, "error", err)
		return
	}
	n, err := env.registry.Decode(frame)
	if err != nil {
		slog.Warn("notification rejected", "plugin", env.plugin, "error", err)
		return
	}
	dispatch.Forward(ctx, env.dispatcher, env.plugin, n)
}
