package dispatch

import (
	"context"
	"log/slog"

	"github.com/CyberFlameGO/lapce/domain/entities"
	"github.com/CyberFlameGO/lapce/domain/ports"
)

// Forward routes one decoded notification to the dispatcher method matching
// its tag. Both execution strategies - the sandbox bridge and the legacy
// RPC handler - funnel through here so the vocabulary is handled once.
// A variant without a handler is logged and dropped.
func Forward(ctx context.Context, d ports.Dispatcher, plugin string, n entities.PluginNotification) {
	switch n := n.(type) {
	case entities.StartLspServer:
		if err := d.StartLspServer(ctx, n.ExecPath, n.LanguageID, n.Options); err != nil {
			slog.Error("start lsp server failed",
				"plugin", plugin, "language_id", n.LanguageID, "error", err)
		}
	default:
		slog.Warn("notification without handler", "plugin", plugin, "method", n.Method())
	}
}
