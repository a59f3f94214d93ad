package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/alert"
)

// Notifier delivers one alert through one channel. Implementations report
// delivery failure as a returned error, never by panicking.
type Notifier interface {
	Notify(ctx context.Context, a alert.Alert) error
}

// Factory builds a notifier from a channel's opaque config section.
type Factory func(logger zerolog.Logger, cfg yaml.Node) (Notifier, error)

// Registry maps notifier type names to factories. Types are resolved once at
// startup; the registry is never consulted at dispatch time.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty notifier registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with all built-in notifier types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("smtp", NewSMTPNotifier)
	r.Register("slack", NewSlackNotifier)
	r.Register("webhook", NewWebhookNotifier)
	r.Register("noop", func(logger zerolog.Logger, _ yaml.Node) (Notifier, error) {
		return NewNoop(logger, ""), nil
	})
	return r
}

// Register adds a factory under the given type name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New builds a notifier of the given type from its config section.
func (r *Registry) New(typeName string, logger zerolog.Logger, cfg yaml.Node) (Notifier, error) {
	factory, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown notifier type %q", typeName)
	}
	return factory(logger, cfg)
}
