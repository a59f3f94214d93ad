package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/alert"
	"github.com/Flowneee/sentinel/internal/check"
	"github.com/Flowneee/sentinel/internal/health"
	"github.com/Flowneee/sentinel/internal/healthcheck"
	"github.com/Flowneee/sentinel/internal/metrics"
)

// Ticker is the minimal interface needed for driving the monitor loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

// Dispatcher is what the monitor needs from the notification router.
type Dispatcher interface {
	Dispatch(a alert.Alert, names []string)
}

// Monitor owns the full health-tracking lifecycle of one resource: it runs
// the resource's checker on a fixed interval, holds the resource's health
// state exclusively, and hands an alert to the dispatcher on every state
// transition. Probes for one resource are strictly sequential.
type Monitor struct {
	logger        zerolog.Logger
	resource      string
	interval      time.Duration
	timeout       time.Duration
	checker       check.Checker
	dispatcher    Dispatcher
	notifierNames []string

	state     health.State
	inFlight  atomic.Bool
	collector *metrics.Metrics
	tracker   *healthcheck.Tracker

	tickerFactory func(time.Duration) Ticker
	now           func() time.Time
}

// Option customizes monitor behavior.
type Option func(*Monitor)

// WithTickerFactory overrides how tickers are created.
func WithTickerFactory(factory func(time.Duration) Ticker) Option {
	return func(m *Monitor) {
		m.tickerFactory = factory
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithMetrics wires check and alert counters into the monitor.
func WithMetrics(collector *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.collector = collector
	}
}

// WithTracker wires the liveness tracker into the monitor.
func WithTracker(tracker *healthcheck.Tracker) Option {
	return func(m *Monitor) {
		m.tracker = tracker
	}
}

// New constructs a monitor for one resource. The probe timeout is capped at
// the check interval so probes can never pile up behind a slow target.
func New(logger zerolog.Logger, resource string, interval, timeout time.Duration, checker check.Checker, dispatcher Dispatcher, notifierNames []string, opts ...Option) *Monitor {
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}

	m := &Monitor{
		logger:        logger,
		resource:      resource,
		interval:      interval,
		timeout:       timeout,
		checker:       checker,
		dispatcher:    dispatcher,
		notifierNames: notifierNames,
		state:         health.StateUnknown,
		tickerFactory: func(d time.Duration) Ticker {
			return timeTicker{ticker: time.NewTicker(d)}
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns the monitor's current health state. The state is owned by
// the monitor's loop; read it only before Run starts or after it returns.
func (m *Monitor) State() health.State {
	return m.state
}

// Run probes the resource for the lifetime of the context. Probe failures of
// any kind never terminate the loop; the only clean exit is cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		return errors.New("check interval must be greater than zero")
	}

	// Probe immediately on startup.
	m.runOnce(ctx)

	ticker := m.tickerFactory(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("monitor stopped")
			return nil
		case <-ticker.C():
			m.runOnce(ctx)
		}
	}
}

// runOnce executes one probe and applies its outcome to the state machine.
func (m *Monitor) runOnce(ctx context.Context) {
	if !m.inFlight.CompareAndSwap(false, true) {
		// An abandoned probe from an earlier tick is still running. Never
		// start a second concurrent probe for the same resource.
		m.collector.IncSkippedTicks(m.resource)
		m.logger.Warn().Msg("previous probe still in flight, skipping tick")
		return
	}

	start := m.now()
	outcome, completed := m.probe(ctx)
	if !completed {
		// Shutdown raced the probe; leave the state untouched.
		return
	}
	duration := m.now().Sub(start)

	if duration > m.interval {
		m.logger.Warn().
			Dur("duration", duration).
			Dur("interval", m.interval).
			Msg("probe exceeded check interval")
	}

	m.collector.ObserveCheck(m.resource, string(outcome.Kind), duration, m.now())
	m.tracker.RecordCheck(duration)

	m.apply(outcome)
}

// probe invokes the checker bounded by the probe timeout. A checker that
// ignores its context and hangs is abandoned at the deadline and reported as
// a checker error; a panicking checker is recovered the same way. The second
// return value is false when the parent context was canceled mid-probe.
func (m *Monitor) probe(ctx context.Context) (health.Outcome, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make(chan health.Outcome, 1)
	go func() {
		defer m.inFlight.Store(false)
		defer func() {
			if rec := recover(); rec != nil {
				results <- health.CheckerError(fmt.Sprintf("checker panicked: %v", rec))
			}
		}()
		results <- m.checker.Check(probeCtx)
	}()

	select {
	case outcome := <-results:
		return outcome, true
	case <-probeCtx.Done():
		if ctx.Err() != nil {
			return health.Outcome{}, false
		}
		return health.CheckerError(fmt.Sprintf("checker timed out after %s", m.timeout)), true
	}
}

// apply advances the state machine and emits an alert on a state change.
// Identical consecutive states never re-notify.
func (m *Monitor) apply(outcome health.Outcome) {
	next := health.Next(outcome)
	m.collector.SetResourceHealthy(m.resource, next == health.StateHealthy)

	if !health.NotifyWorthy(m.state, next) {
		m.logger.Debug().
			Str("state", string(next)).
			Str("reason", outcome.Reason).
			Msg("state unchanged")
		return
	}

	a := alert.New(m.resource, m.state, next, outcome.Reason, m.now())
	m.state = next

	event := m.logger.Info()
	if next == health.StateUnhealthy {
		event = m.logger.Error()
	}
	event.
		Str("previous_state", string(a.Previous)).
		Str("current_state", string(a.Current)).
		Str("reason", a.Reason).
		Msg("state transition detected")

	m.collector.IncAlerts(m.resource)
	m.dispatcher.Dispatch(a, m.notifierNames)
}
