package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/Flowneee/sentinel/internal/health"
)

// Alert is an immutable record of one resource's health-state transition.
type Alert struct {
	Resource string
	Previous health.State
	Current  health.State
	Reason   string
	Time     time.Time
}

// New builds an alert for a transition observed at the given time.
func New(resource string, previous, current health.State, reason string, at time.Time) Alert {
	return Alert{
		Resource: resource,
		Previous: previous,
		Current:  current,
		Reason:   reason,
		Time:     at.UTC(),
	}
}

// Recovered reports whether the alert announces a return to health.
func (a Alert) Recovered() bool {
	return a.Current == health.StateHealthy && a.Previous == health.StateUnhealthy
}

// Title renders a short operator-facing summary, suitable for an email
// subject or a message header.
func (a Alert) Title() string {
	switch {
	case a.Recovered():
		return fmt.Sprintf("Resolved: %s is healthy again", a.Resource)
	case a.Current == health.StateHealthy:
		return fmt.Sprintf("%s is healthy", a.Resource)
	default:
		return fmt.Sprintf("Alert: %s is unhealthy", a.Resource)
	}
}

// Body renders the full operator-facing message.
func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resource %s transitioned from %s to %s.\n", a.Resource, a.Previous, a.Current)
	if a.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", a.Reason)
	}
	fmt.Fprintf(&b, "Observed at: %s\n", a.Time.Format(time.RFC3339))
	return b.String()
}
