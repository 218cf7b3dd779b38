package ports

import "github.com/CyberFlameGO/lapce/domain/entities"

// NotificationRegistry manages the guest-to-host notification vocabulary:
// one prototype and one generated JSON Schema per method tag. Decoding
// routes through it, so an unknown tag is a decode failure, never a crash.
type NotificationRegistry interface {
	// Register adds a notification variant under its method tag.
	Register(proto entities.PluginNotification) error

	// Decode decodes one framed {"method":...,"params":...} payload.
	Decode(frame []byte) (entities.PluginNotification, error)

	// DecodeMethod decodes the params of an already-split envelope.
	DecodeMethod(method string, params []byte) (entities.PluginNotification, error)

	// GetSchema retrieves the JSON Schema for a method tag.
	GetSchema(method string) (string, bool)

	// List returns all registered method tags.
	List() []string
}
