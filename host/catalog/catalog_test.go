package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberFlameGO/lapce/domain/entities"
	"github.com/CyberFlameGO/lapce/internal/wasmtest"
)

type nullDispatcher struct{}

func (nullDispatcher) StartLspServer(context.Context, string, string, json.RawMessage) error {
	return nil
}

// writePlugin lays out <root>/<name>/manifest.toml plus the module file it
// points at.
func writePlugin(t *testing.T, root, name, manifest string, wasm []byte) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if wasm != nil {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".wasm"), wasm, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0o644))
}

func validManifest(name string) string {
	return "name = \"" + name + "\"\nversion = \"0.1\"\nexec_path = \"./" + name + ".wasm\"\n"
}

func TestLoadDiscoversOneDescriptionPerManifest(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "alpha", validManifest("alpha"), wasmtest.NoopModule())
	writePlugin(t, root, "beta", validManifest("beta"), wasmtest.NoopModule())
	// A directory without a manifest contributes nothing.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(context.Background())
	c.Load()

	descs := c.Descriptions()
	assert.Len(t, descs, 2)
	assert.Contains(t, descs, "alpha")
	assert.Contains(t, descs, "beta")
}

func TestLoadSkipsMalformedManifest(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "good", validManifest("good"), wasmtest.NoopModule())
	writePlugin(t, root, "bad", "name = ", nil)

	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(context.Background())
	c.Load()

	descs := c.Descriptions()
	assert.Len(t, descs, 1)
	assert.Contains(t, descs, "good")
}

func TestLoadIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "alpha", validManifest("alpha"), wasmtest.NoopModule())

	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(context.Background())
	c.Load()
	c.Load()

	assert.Len(t, c.Descriptions(), 1)
}

func TestLoadMissingPluginsDir(t *testing.T) {
	c := New(nullDispatcher{}, WithPluginsDir(filepath.Join(t.TempDir(), "nope")))
	defer c.Close(context.Background())

	c.Load()
	assert.Empty(t, c.Descriptions())
}

func TestReloadProducesEqualDescriptionSet(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "alpha", validManifest("alpha"), wasmtest.NoopModule())
	writePlugin(t, root, "beta", validManifest("beta"), wasmtest.NoopModule())

	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(context.Background())
	c.Load()
	before := c.Descriptions()

	c.Reload(context.Background())
	assert.Equal(t, before, c.Descriptions())
}

func TestReloadDropsRunningInstances(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "alpha", validManifest("alpha"), wasmtest.NoopModule())

	ctx := context.Background()
	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(ctx)
	c.Load()
	c.StartAll(ctx)
	require.Len(t, c.Instances(), 1)

	c.Reload(ctx)
	assert.Empty(t, c.Instances())
	assert.Len(t, c.Descriptions(), 1)
}

func TestNextPluginIDStrictlyIncreasing(t *testing.T) {
	c := New(nullDispatcher{}, WithPluginsDir(t.TempDir()))
	defer c.Close(context.Background())

	seen := make(map[entities.PluginID]bool)
	prev := entities.PluginID(0)
	for i := 0; i < 64; i++ {
		id := c.NextPluginID()
		assert.Greater(t, id, prev)
		assert.False(t, seen[id])
		seen[id] = true
		prev = id
	}
}

func TestStartAllAssignsFirstIDToFirstStart(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "demo", validManifest("demo"), wasmtest.NoopModule())

	ctx := context.Background()
	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(ctx)
	c.Load()

	descs := c.Descriptions()
	require.Contains(t, descs, "demo")
	assert.True(t, filepath.IsAbs(descs["demo"].ExecPath))

	c.StartAll(ctx)
	instances := c.Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, entities.PluginID(1), instances[0].ID())
	assert.Equal(t, "demo", instances[0].Name())
}

func TestStartAllSkipsFailingPlugin(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "broken", validManifest("broken"), []byte("not wasm"))
	writePlugin(t, root, "works", validManifest("works"), wasmtest.NoopModule())

	ctx := context.Background()
	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(ctx)
	c.Load()
	c.StartAll(ctx)

	instances := c.Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, "works", instances[0].Name())
}

func TestStartAllIsSequentialAndRestartable(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "alpha", validManifest("alpha"), wasmtest.NoopModule())
	writePlugin(t, root, "beta", validManifest("beta"), wasmtest.NoopModule())

	ctx := context.Background()
	c := New(nullDispatcher{}, WithPluginsDir(root))
	defer c.Close(ctx)
	c.Load()
	c.StartAll(ctx)
	require.Len(t, c.Instances(), 2)

	// Reload and start again: fresh instances, fresh identifiers.
	c.Reload(ctx)
	c.StartAll(ctx)
	instances := c.Instances()
	require.Len(t, instances, 2)
	assert.Greater(t, instances[0].ID(), entities.PluginID(2))
}
