package entities

// PluginName keys the catalog's description map. Manifests sharing a name
// overwrite each other, last discovered wins.
type PluginName = string

// PluginID identifies one running plugin instance. IDs are minted by the
// catalog when an instance starts, never at discovery time, so re-scanning
// the same manifests does not consume identifier space.
type PluginID uint64

// Counter mints strictly increasing plugin identifiers. The zero value is
// ready to use; the first identifier issued is 1.
type Counter struct {
	n uint64
}

// Next returns a fresh, previously unused identifier.
func (c *Counter) Next() PluginID {
	c.n++
	return PluginID(c.n)
}

// PluginDescription is the manifest-derived description of one extension.
// It is immutable after load: Dir and ExecPath are absolute, canonicalized
// and existence-checked by the manifest loader.
type PluginDescription struct {
	Name          string `toml:"name" json:"name" validate:"required"`
	Version       string `toml:"version" json:"version" validate:"required"`
	ExecPath      string `toml:"exec_path" json:"exec_path" validate:"required"`
	Dir           string `toml:"-" json:"dir,omitempty"`
	Configuration any    `toml:"configuration" json:"configuration,omitempty"`
}

// InitConfiguration returns the value handed to the extension at
// initialization: the manifest's configuration, or an empty object when the
// manifest declared none.
func (d *PluginDescription) InitConfiguration() any {
	if d.Configuration == nil {
		return map[string]any{}
	}
	return d.Configuration
}
