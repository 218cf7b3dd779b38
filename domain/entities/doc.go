// Package entities provides the core domain types of the plugin proxy:
// manifest-derived plugin descriptions, plugin identities, and the wire form
// of the guest-to-host notification protocol.
package entities
