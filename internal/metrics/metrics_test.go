package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsUpdates(t *testing.T) {
	m := New()

	m.ObserveCheck("api", "HEALTHY", 200*time.Millisecond, time.Unix(100, 0))
	m.SetResourceHealthy("api", true)
	m.SetResourceHealthy("db", false)
	m.IncAlerts("api")
	m.IncNotificationsSent("mail")
	m.IncNotifyFailures("pager")
	m.IncSkippedTicks("api")

	if got := testutil.ToFloat64(m.checksTotal.WithLabelValues("api", "HEALTHY")); got != 1 {
		t.Fatalf("expected one check, got %v", got)
	}
	if got := testutil.ToFloat64(m.resourceHealthy.WithLabelValues("api")); got != 1 {
		t.Fatalf("expected api healthy gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.resourceHealthy.WithLabelValues("db")); got != 0 {
		t.Fatalf("expected db healthy gauge 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.alertsTotal.WithLabelValues("api")); got != 1 {
		t.Fatalf("expected one alert, got %v", got)
	}
	if got := testutil.ToFloat64(m.notificationsSent.WithLabelValues("mail")); got != 1 {
		t.Fatalf("expected one delivery, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifyFailuresTotal.WithLabelValues("pager")); got != 1 {
		t.Fatalf("expected one failed delivery, got %v", got)
	}
	if got := testutil.ToFloat64(m.skippedTicksTotal.WithLabelValues("api")); got != 1 {
		t.Fatalf("expected one skipped tick, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastCheckTimestampSec.WithLabelValues("api")); got != 100 {
		t.Fatalf("expected last check timestamp 100, got %v", got)
	}
	if count := testutil.CollectAndCount(m.checkDurationSeconds); count == 0 {
		t.Fatalf("expected check duration histogram to be collected")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics

	m.ObserveCheck("api", "HEALTHY", time.Second, time.Now())
	m.SetResourceHealthy("api", true)
	m.IncAlerts("api")
	m.IncNotificationsSent("mail")
	m.IncNotifyFailures("mail")
	m.IncSkippedTicks("api")

	if m.Handler() == nil {
		t.Fatalf("nil metrics should still return a handler")
	}
}
