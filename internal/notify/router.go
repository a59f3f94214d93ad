package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/alert"
	"github.com/Flowneee/sentinel/internal/metrics"
)

const defaultDispatchTimeout = 30 * time.Second

// Router delivers alerts to the notifiers bound to the originating resource.
// Dispatch is fire-and-forget: each bound notifier runs in its own goroutine
// with its own timeout, so a slow or failing channel never stalls a
// resource's check loop or its sibling channels.
type Router struct {
	logger          zerolog.Logger
	notifiers       map[string]Notifier
	collector       *metrics.Metrics
	dispatchTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RouterOption customizes router behavior.
type RouterOption func(*Router)

// WithDispatchTimeout bounds each notifier invocation.
func WithDispatchTimeout(timeout time.Duration) RouterOption {
	return func(r *Router) {
		r.dispatchTimeout = timeout
	}
}

// WithMetrics wires delivery counters into the router.
func WithMetrics(collector *metrics.Metrics) RouterOption {
	return func(r *Router) {
		r.collector = collector
	}
}

// NewRouter builds a router over a fixed name-to-notifier mapping. The
// mapping is established once at startup and read-only thereafter.
func NewRouter(logger zerolog.Logger, notifiers map[string]Notifier, opts ...RouterOption) *Router {
	baseCtx, cancel := context.WithCancel(context.Background())
	r := &Router{
		logger:          logger,
		notifiers:       notifiers,
		dispatchTimeout: defaultDispatchTimeout,
		baseCtx:         baseCtx,
		cancel:          cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bindings validates that every name resolves to a configured notifier.
// Called once at startup; an unresolved reference refuses the whole process.
func (r *Router) Bindings(names []string) error {
	for _, name := range names {
		if _, ok := r.notifiers[name]; !ok {
			return fmt.Errorf("unknown notifier %q", name)
		}
	}
	return nil
}

// Dispatch hands the alert to every named notifier and returns immediately.
// Each delivery failure is logged with resource and notifier identity and
// never affects sibling deliveries.
func (r *Router) Dispatch(a alert.Alert, names []string) {
	for _, name := range names {
		notifier, ok := r.notifiers[name]
		if !ok {
			// Bindings are validated at startup, so this is a programming
			// error rather than a configuration one.
			r.logger.Error().
				Str("resource", a.Resource).
				Str("notifier", name).
				Msg("dispatch to unresolved notifier")
			continue
		}

		r.wg.Add(1)
		go r.deliver(name, notifier, a)
	}
}

func (r *Router) deliver(name string, notifier Notifier, a alert.Alert) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.collector.IncNotifyFailures(name)
			r.logger.Error().
				Str("resource", a.Resource).
				Str("notifier", name).
				Interface("panic", rec).
				Msg("notifier panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(r.baseCtx, r.dispatchTimeout)
	defer cancel()

	if err := notifier.Notify(ctx, a); err != nil {
		r.collector.IncNotifyFailures(name)
		r.logger.Error().
			Err(err).
			Str("resource", a.Resource).
			Str("notifier", name).
			Msg("notification failed")
		return
	}

	r.collector.IncNotificationsSent(name)
	r.logger.Debug().
		Str("resource", a.Resource).
		Str("notifier", name).
		Msg("notification delivered")
}

// Close waits up to grace for in-flight deliveries, then abandons the rest.
func (r *Router) Close(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		r.logger.Warn().Msg("shutdown grace elapsed, abandoning in-flight notifications")
	}
	r.cancel()
}
