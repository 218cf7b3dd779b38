// Package process runs extensions that cannot live inside the sandbox: the
// executable is spawned directly and spoken to over newline-delimited
// JSON-RPC on its standard streams. The notification vocabulary is the same
// one the sandbox bridge handles; only the transport differs.
package process

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/CyberFlameGO/lapce/application/dispatch"
	"github.com/CyberFlameGO/lapce/domain/entities"
	derrors "github.com/CyberFlameGO/lapce/domain/errors"
	"github.com/CyberFlameGO/lapce/domain/ports"
)

// Plugin is one running legacy extension.
type Plugin struct {
	id   entities.PluginID
	desc entities.PluginDescription
	cmd  *exec.Cmd
	conn *jsonrpc2.Conn
}

// initializeParams is the bootstrap notification sent immediately after
// spawn.
type initializeParams struct {
	PluginID      entities.PluginID `json:"plugin_id"`
	Configuration any               `json:"configuration"`
}

// Start spawns desc.ExecPath, wraps its stdio in an RPC peer, and sends the
// initialize notification carrying the plugin id and configuration.
func Start(ctx context.Context, id entities.PluginID, desc entities.PluginDescription, dispatcher ports.Dispatcher, reg ports.NotificationRegistry) (*Plugin, error) {
	cmd := exec.Command(desc.ExecPath)
	cmd.Dir = desc.Dir
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &derrors.StartError{Plugin: desc.Name, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &derrors.StartError{Plugin: desc.Name, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &derrors.StartError{Plugin: desc.Name, Err: err}
	}

	stream := jsonrpc2.NewBufferedStream(
		stdioConn{ReadCloser: stdout, WriteCloser: stdin},
		jsonrpc2.PlainObjectCodec{},
	)
	handler := &Handler{Plugin: desc.Name, Dispatcher: dispatcher, Registry: reg}
	conn := jsonrpc2.NewConn(ctx, stream, handler)

	p := &Plugin{id: id, desc: desc, cmd: cmd, conn: conn}
	if err := conn.Notify(ctx, "initialize", initializeParams{
		PluginID:      id,
		Configuration: desc.Configuration,
	}); err != nil {
		_ = p.Close(ctx)
		return nil, &derrors.StartError{Plugin: desc.Name, Err: err}
	}

	slog.Info("legacy plugin started",
		"plugin", desc.Name, "id", id, "pid", cmd.Process.Pid)
	return p, nil
}

// ID implements ports.Instance.
func (p *Plugin) ID() entities.PluginID { return p.id }

// Name implements ports.Instance.
func (p *Plugin) Name() string { return p.desc.Name }

// Close shuts the RPC connection and kills the child process.
func (p *Plugin) Close(ctx context.Context) error {
	err := p.conn.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	return err
}

// Handler routes peer messages from a legacy plugin. Only notifications are
// supported: a request is answered with an invalid-request error and the
// connection stays alive.
type Handler struct {
	Plugin     string
	Dispatcher ports.Dispatcher
	Registry   ports.NotificationRegistry
}

// Handle implements jsonrpc2.Handler.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if !req.Notif {
		err := conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidRequest,
			Message: "invalid request",
		})
		if err != nil {
			slog.Warn("reply to unsupported request failed", "plugin", h.Plugin, "error", err)
		}
		return
	}

	var params []byte
	if req.Params != nil {
		params = *req.Params
	}
	n, err := h.Registry.DecodeMethod(req.Method, params)
	if err != nil {
		slog.Warn("notification rejected", "plugin", h.Plugin, "method", req.Method, "error", err)
		return
	}
	dispatch.Forward(ctx, h.Dispatcher, h.Plugin, n)
}

// stdioConn joins the child's stdin and stdout into the single
// ReadWriteCloser the RPC stream wants.
type stdioConn struct {
	io.ReadCloser
	io.WriteCloser
}

func (c stdioConn) Close() error {
	werr := c.WriteCloser.Close()
	rerr := c.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

var _ ports.Instance = (*Plugin)(nil)
