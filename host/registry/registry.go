// Package registry keeps the guest-to-host notification vocabulary: one
// prototype and one generated JSON Schema per method tag. The capability
// bridge and the legacy RPC handler decode through it, so an unknown tag is
// a decode failure instead of a crash - new variants can appear on the wire
// before every host knows them.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/CyberFlameGO/lapce/domain/entities"
	derrors "github.com/CyberFlameGO/lapce/domain/errors"
	"github.com/CyberFlameGO/lapce/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true, // Secure default: prevent accidental overwrites
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates). Disable only for testing.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry implements ports.NotificationRegistry.
type Registry struct {
	config  registryConfig
	protos  sync.Map // map[string]entities.PluginNotification
	schemas sync.Map // map[string]string (json schema)
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// Default returns a registry primed with the built-in notification set.
func Default() *Registry {
	r := NewRegistry()
	if err := r.Register(entities.StartLspServer{}); err != nil {
		// Registering built-ins into a fresh registry cannot collide.
		panic(err)
	}
	return r
}

// Register adds a notification variant under its method tag and stores a
// schema generated from the prototype struct.
func (r *Registry) Register(proto entities.PluginNotification) error {
	method := proto.Method()
	if r.config.strictMode {
		if _, exists := r.protos.Load(method); exists {
			return fmt.Errorf("notification %q already registered", method)
		}
	}

	r.protos.Store(method, proto)

	// Generate schema using invopop/jsonschema
	s := jsonschema.Reflect(proto)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal schema for %s: %w", method, err)
	}
	r.schemas.Store(method, string(data))
	return nil
}

// Decode decodes one framed {"method":...,"params":...} payload into the
// registered variant. Missing or unknown tags and malformed params come
// back as a DecodeError.
func (r *Registry) Decode(frame []byte) (entities.PluginNotification, error) {
	var env entities.NotificationEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, &derrors.DecodeError{Err: err}
	}
	if env.Method == "" {
		return nil, &derrors.DecodeError{Err: errors.New("missing method tag")}
	}
	return r.DecodeMethod(env.Method, env.Params)
}

// DecodeMethod decodes the params of an already-split envelope, for callers
// whose transport separates method and params (the legacy RPC peer). Every
// variant carries a params payload; an envelope without one never reaches
// the dispatcher as a zero value.
func (r *Registry) DecodeMethod(method string, params []byte) (entities.PluginNotification, error) {
	v, ok := r.protos.Load(method)
	if !ok {
		return nil, &derrors.DecodeError{Err: fmt.Errorf("unknown method %q", method)}
	}
	if entities.IsNull(params) {
		return nil, &derrors.DecodeError{Err: fmt.Errorf("missing params for %q", method)}
	}

	target := reflect.New(reflect.TypeOf(v))
	if err := json.Unmarshal(params, target.Interface()); err != nil {
		return nil, &derrors.DecodeError{Err: err}
	}
	return target.Elem().Interface().(entities.PluginNotification), nil
}

// GetSchema retrieves the JSON Schema for a method tag.
func (r *Registry) GetSchema(method string) (string, bool) {
	v, ok := r.schemas.Load(method)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// List returns all registered method tags, sorted.
func (r *Registry) List() []string {
	var methods []string
	r.protos.Range(func(k, v interface{}) bool {
		methods = append(methods, k.(string))
		return true
	})
	sort.Strings(methods)
	return methods
}

var _ ports.NotificationRegistry = (*Registry)(nil)
