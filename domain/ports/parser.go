package ports

import "github.com/CyberFlameGO/lapce/domain/entities"

// ManifestLoader reads one manifest file into a plugin description.
type ManifestLoader interface {
	// LoadManifest parses the manifest at path and resolves its relative
	// paths against the manifest's directory. The returned description has
	// absolute, existence-checked Dir and ExecPath.
	LoadManifest(path string) (*entities.PluginDescription, error)
}
