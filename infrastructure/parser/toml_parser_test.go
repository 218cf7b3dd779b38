package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/CyberFlameGO/lapce/domain/errors"
)

// writeManifest lays out one extension directory with a manifest and a
// dummy module file next to it.
func writeManifest(t *testing.T, dir, contents string, modules ...string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, m := range modules {
		require.NoError(t, os.WriteFile(filepath.Join(dir, m), []byte{0}, 0o644))
	}
	path := filepath.Join(dir, ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadManifestResolvesRelativeExecPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	path := writeManifest(t, dir, `
name = "demo"
version = "0.1"
exec_path = "./demo.wasm"
`, "demo.wasm")

	desc, err := NewTomlManifestLoader().LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", desc.Name)
	assert.Equal(t, "0.1", desc.Version)
	assert.True(t, filepath.IsAbs(desc.Dir))
	assert.True(t, filepath.IsAbs(desc.ExecPath))
	_, err = os.Stat(desc.ExecPath)
	assert.NoError(t, err)
	_, err = os.Stat(desc.Dir)
	assert.NoError(t, err)
	assert.Equal(t, "demo.wasm", filepath.Base(desc.ExecPath))
}

func TestLoadManifestKeepsConfiguration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	path := writeManifest(t, dir, `
name = "conf"
version = "1.0.0"
exec_path = "conf.wasm"

[configuration]
theme = "dark"
`, "conf.wasm")

	desc, err := NewTomlManifestLoader().LoadManifest(path)
	require.NoError(t, err)

	cfg, ok := desc.Configuration.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dark", cfg["theme"])
}

func TestLoadManifestFailures(t *testing.T) {
	loader := NewTomlManifestLoader()

	tests := []struct {
		name     string
		manifest string
		modules  []string
	}{
		{
			name:     "malformed toml",
			manifest: `name = `,
		},
		{
			name:     "missing required fields",
			manifest: `name = "demo"`,
		},
		{
			name: "exec path does not exist",
			manifest: `
name = "demo"
version = "0.1"
exec_path = "./missing.wasm"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "bad")
			path := writeManifest(t, dir, tt.manifest, tt.modules...)

			_, err := loader.LoadManifest(path)
			var manifestErr *derrors.ManifestError
			require.True(t, errors.As(err, &manifestErr))
			assert.Equal(t, path, manifestErr.Path)
		})
	}
}

func TestLoadManifestUnreadableFile(t *testing.T) {
	_, err := NewTomlManifestLoader().LoadManifest(filepath.Join(t.TempDir(), "nope", ManifestFileName))
	var manifestErr *derrors.ManifestError
	assert.True(t, errors.As(err, &manifestErr))
}
