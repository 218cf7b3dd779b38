package ports

import (
	"context"

	"github.com/CyberFlameGO/lapce/domain/entities"
)

// Instance is one running extension. Two execution strategies implement it:
// the wazero sandbox and the legacy out-of-process plugin. Both feed the
// same notification vocabulary into the Dispatcher; the catalog manages
// them uniformly.
type Instance interface {
	// ID returns the identifier the catalog minted when the instance
	// started.
	ID() entities.PluginID

	// Name returns the manifest-declared plugin name.
	Name() string

	// Close tears the instance down. For sandboxes this drops the module
	// and its virtual I/O; for legacy plugins it kills the child process.
	Close(ctx context.Context) error
}
