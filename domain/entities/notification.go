package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Method tags of the built-in notification vocabulary.
const (
	MethodStartLspServer = "start_lsp_server"
)

// PluginNotification is a one-way, tagged message sent from an extension to
// the host. The set of variants is closed: each carries the method tag that
// selects it on the wire, and decoding routes on that tag alone.
type PluginNotification interface {
	// Method returns the wire tag identifying this notification kind.
	Method() string
}

// StartLspServer asks the host to launch a language server for one language.
type StartLspServer struct {
	ExecPath   string          `json:"exec_path"`
	LanguageID string          `json:"language_id"`
	Options    json.RawMessage `json:"options,omitempty"`
}

// Method implements PluginNotification.
func (StartLspServer) Method() string { return MethodStartLspServer }

// NotificationEnvelope is the wire form of a notification: a method
// discriminator plus the variant payload.
type NotificationEnvelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// EncodeNotification frames n as one {"method":...,"params":...} object.
func EncodeNotification(n PluginNotification) ([]byte, error) {
	params, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", n.Method(), err)
	}
	return json.Marshal(NotificationEnvelope{Method: n.Method(), Params: params})
}

// IsNull reports whether a raw JSON value is absent or the literal null.
// Guests send "options": null for notifications that carry no options.
func IsNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
