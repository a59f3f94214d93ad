package check

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/health"
)

// Checker probes one resource. Implementations must be safe to invoke
// repeatedly, must respect the context deadline, and report an inability to
// complete the probe as a CheckerError outcome rather than hang.
type Checker interface {
	Check(ctx context.Context) health.Outcome
}

// Factory builds a checker from the resource's opaque config section.
type Factory func(cfg yaml.Node) (Checker, error)

// Registry maps checker type names to factories. Types are resolved once at
// startup; the registry is never consulted at check time.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty checker registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with all built-in checker types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("http", NewHTTPChecker)
	return r
}

// Register adds a factory under the given type name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New builds a checker of the given type from its config section.
func (r *Registry) New(typeName string, cfg yaml.Node) (Checker, error) {
	factory, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown checker type %q", typeName)
	}
	return factory(cfg)
}
