// Package parser loads manifest.toml files into plugin descriptions.
package parser

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/CyberFlameGO/lapce/domain/entities"
	derrors "github.com/CyberFlameGO/lapce/domain/errors"
	"github.com/CyberFlameGO/lapce/domain/ports"
)

// ManifestFileName is the manifest each extension directory must contain.
const ManifestFileName = "manifest.toml"

// validate is a package-level singleton; creating a validator per call is
// expensive.
var validate = validator.New()

// TomlManifestLoader implements ports.ManifestLoader for manifest.toml
// files.
type TomlManifestLoader struct{}

// NewTomlManifestLoader creates a new TomlManifestLoader.
func NewTomlManifestLoader() ports.ManifestLoader {
	return &TomlManifestLoader{}
}

// LoadManifest parses the manifest at path. A relative exec_path is joined
// onto the manifest's directory; both dir and exec_path come back absolute,
// canonicalized and existence-checked. Every failure is a ManifestError the
// caller logs before moving on to the next manifest.
func (l *TomlManifestLoader) LoadManifest(path string) (*entities.PluginDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &derrors.ManifestError{Path: path, Err: err}
	}

	var desc entities.PluginDescription
	if err := toml.Unmarshal(data, &desc); err != nil {
		return nil, &derrors.ManifestError{Path: path, Err: err}
	}
	if err := validate.Struct(&desc); err != nil {
		return nil, &derrors.ManifestError{Path: path, Err: err}
	}

	dir, err := canonicalize(filepath.Dir(path))
	if err != nil {
		return nil, &derrors.ManifestError{Path: path, Err: err}
	}

	execPath := desc.ExecPath
	if !filepath.IsAbs(execPath) {
		execPath = filepath.Join(dir, execPath)
	}
	// Canonicalizing also checks existence: a dangling exec_path fails here.
	execPath, err = canonicalize(execPath)
	if err != nil {
		return nil, &derrors.ManifestError{Path: path, Err: err}
	}

	desc.Dir = dir
	desc.ExecPath = execPath
	return &desc, nil
}

// canonicalize makes path absolute and resolves symlinks and ".." segments.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
