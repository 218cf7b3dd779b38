package ports

import (
	"context"
	"encoding/json"
)

// Dispatcher receives decoded plugin notifications and performs the
// corresponding host-side action. It is the only resource shared across all
// running extensions; implementations guard their internal state with a
// mutex held for the duration of one call.
type Dispatcher interface {
	// StartLspServer launches a language server for languageID, if one is
	// not already running. Safe to call repeatedly for the same language.
	StartLspServer(ctx context.Context, execPath, languageID string, options json.RawMessage) error
}
