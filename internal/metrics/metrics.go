package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps Prometheus collectors for sentinel. All methods are nil-safe
// so instrumentation can be left unwired in tests.
type Metrics struct {
	registry              *prometheus.Registry
	checkDurationSeconds  *prometheus.HistogramVec
	checksTotal           *prometheus.CounterVec
	resourceHealthy       *prometheus.GaugeVec
	alertsTotal           *prometheus.CounterVec
	notificationsSent     *prometheus.CounterVec
	notifyFailuresTotal   *prometheus.CounterVec
	skippedTicksTotal     *prometheus.CounterVec
	lastCheckTimestampSec *prometheus.GaugeVec
}

// New initializes a Metrics registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		checkDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_check_duration_seconds",
			Help:    "Duration of resource probes in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_checks_total",
			Help: "Total completed probes by resource and outcome.",
		}, []string{"resource", "outcome"}),
		resourceHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_resource_healthy",
			Help: "Whether the resource's last observed state was healthy (1) or not (0).",
		}, []string{"resource"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_alerts_total",
			Help: "Total alerts emitted by resource.",
		}, []string{"resource"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_notifications_sent_total",
			Help: "Total successful notifier deliveries by notifier.",
		}, []string{"notifier"}),
		notifyFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_notify_failures_total",
			Help: "Total failed notifier deliveries by notifier.",
		}, []string{"notifier"}),
		skippedTicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_skipped_ticks_total",
			Help: "Total check ticks skipped because a previous probe was still in flight.",
		}, []string{"resource"}),
		lastCheckTimestampSec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_last_check_timestamp",
			Help: "Unix timestamp of the resource's last completed probe.",
		}, []string{"resource"}),
	}

	registry.MustRegister(
		m.checkDurationSeconds,
		m.checksTotal,
		m.resourceHealthy,
		m.alertsTotal,
		m.notificationsSent,
		m.notifyFailuresTotal,
		m.skippedTicksTotal,
		m.lastCheckTimestampSec,
	)

	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCheck records one completed probe.
func (m *Metrics) ObserveCheck(resource, outcome string, duration time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.checkDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())
	m.checksTotal.WithLabelValues(resource, outcome).Inc()
	m.lastCheckTimestampSec.WithLabelValues(resource).Set(float64(at.Unix()))
}

// SetResourceHealthy sets the health gauge for the given resource.
func (m *Metrics) SetResourceHealthy(resource string, healthy bool) {
	if m == nil {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.resourceHealthy.WithLabelValues(resource).Set(value)
}

// IncAlerts increments the alerts counter for the given resource.
func (m *Metrics) IncAlerts(resource string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(resource).Inc()
}

// IncNotificationsSent increments the delivery counter for a notifier.
func (m *Metrics) IncNotificationsSent(notifier string) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(notifier).Inc()
}

// IncNotifyFailures increments the failed-delivery counter for a notifier.
func (m *Metrics) IncNotifyFailures(notifier string) {
	if m == nil {
		return
	}
	m.notifyFailuresTotal.WithLabelValues(notifier).Inc()
}

// IncSkippedTicks increments the skipped-tick counter for a resource.
func (m *Metrics) IncSkippedTicks(resource string) {
	if m == nil {
		return
	}
	m.skippedTicksTotal.WithLabelValues(resource).Inc()
}
