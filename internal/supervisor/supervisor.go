package supervisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/check"
	"github.com/Flowneee/sentinel/internal/config"
	"github.com/Flowneee/sentinel/internal/monitor"
)

// Supervisor owns the set of all resource monitors for the process lifetime.
// It is a pure composition root: all per-resource bindings are resolved when
// it is constructed, and it holds no resource-specific mutable state.
type Supervisor struct {
	logger        zerolog.Logger
	monitors      map[string]*monitor.Monitor
	monitorErrors map[string]error
	mu            sync.RWMutex
}

// Router is what the supervisor needs from the notification router: startup
// validation of notifier bindings plus alert dispatch for its monitors.
type Router interface {
	monitor.Dispatcher
	Bindings(names []string) error
}

// Option customizes supervisor construction.
type Option func(*builder)

type builder struct {
	monitorOpts []monitor.Option
}

// WithMonitorOptions applies the given options to every constructed monitor.
func WithMonitorOptions(opts ...monitor.Option) Option {
	return func(b *builder) {
		b.monitorOpts = append(b.monitorOpts, opts...)
	}
}

// New resolves every resource's checker type and notifier bindings and
// constructs one monitor per resource. Any unresolved type or binding is a
// configuration error: the supervisor refuses to start and no monitor runs.
func New(logger zerolog.Logger, resources []config.Resource, registry *check.Registry, router Router, opts ...Option) (*Supervisor, error) {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	monitors := make(map[string]*monitor.Monitor, len(resources))
	for _, resource := range resources {
		checker, err := registry.New(resource.Type, resource.Config)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", resource.Name, err)
		}
		if err := router.Bindings(resource.Notifiers); err != nil {
			return nil, fmt.Errorf("resource %q: %w", resource.Name, err)
		}

		resourceLogger := logger.With().Str("resource", resource.Name).Logger()
		monitors[resource.Name] = monitor.New(
			resourceLogger,
			resource.Name,
			resource.Interval(),
			resource.Timeout(),
			checker,
			router,
			resource.Notifiers,
			b.monitorOpts...,
		)
	}

	return &Supervisor{
		logger:        logger,
		monitors:      monitors,
		monitorErrors: make(map[string]error),
	}, nil
}

// Run starts all monitors concurrently and blocks until every loop has
// stopped. Resources are fully independent: one monitor's failure or panic
// never affects its siblings, and a failed monitor is not restarted.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info().
		Int("resources", len(s.monitors)).
		Msg("starting supervisor")

	var wg sync.WaitGroup
	for name, m := range s.monitors {
		wg.Add(1)
		go s.spawnMonitor(ctx, &wg, name, m)
	}

	wg.Wait()
	s.logger.Info().Msg("all monitors stopped")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, err := range s.monitorErrors {
		if err != nil {
			s.logger.Error().Err(err).Str("resource", name).Msg("monitor error")
		}
	}

	return nil
}

// spawnMonitor runs a single monitor, containing panics at its boundary so
// sibling resources keep being checked.
func (s *Supervisor) spawnMonitor(ctx context.Context, wg *sync.WaitGroup, name string, m *monitor.Monitor) {
	defer wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("monitor panicked: %v", rec)
			s.logger.Error().Err(err).Str("resource", name).Msg("monitor terminated unexpectedly")
			s.recordError(name, err)
		}
	}()

	s.logger.Info().Str("resource", name).Msg("monitor started")

	if err := m.Run(ctx); err != nil {
		s.logger.Error().Err(err).Str("resource", name).Msg("monitor exited with error")
		s.recordError(name, err)
		return
	}
	s.logger.Info().Str("resource", name).Msg("monitor exited cleanly")
}

func (s *Supervisor) recordError(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitorErrors[name] = err
}

// Monitors returns a copy of the monitors map for testing.
func (s *Supervisor) Monitors() map[string]*monitor.Monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*monitor.Monitor, len(s.monitors))
	for k, v := range s.monitors {
		result[k] = v
	}
	return result
}
