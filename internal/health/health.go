package health

// State represents the tracked health of a resource.
type State string

const (
	StateUnknown   State = "UNKNOWN"
	StateHealthy   State = "HEALTHY"
	StateUnhealthy State = "UNHEALTHY"
)

// OutcomeKind classifies the result of a single probe.
type OutcomeKind string

const (
	// OutcomeHealthy means the probe completed and the resource met its
	// success criteria.
	OutcomeHealthy OutcomeKind = "HEALTHY"
	// OutcomeUnhealthy means the probe completed and the resource failed its
	// success criteria.
	OutcomeUnhealthy OutcomeKind = "UNHEALTHY"
	// OutcomeCheckerError means the probe itself could not be completed
	// (timeout, network failure, checker panic).
	OutcomeCheckerError OutcomeKind = "CHECKER_ERROR"
)

// Outcome is the result of one probe of one resource.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Healthy returns a successful probe outcome.
func Healthy() Outcome {
	return Outcome{Kind: OutcomeHealthy}
}

// Unhealthy returns an outcome for a completed probe that found the resource
// failing its success criteria.
func Unhealthy(reason string) Outcome {
	return Outcome{Kind: OutcomeUnhealthy, Reason: reason}
}

// CheckerError returns an outcome for a probe that could not be completed.
// The reason is prefixed so alerts keep the distinction from a completed
// probe that found the resource unhealthy.
func CheckerError(reason string) Outcome {
	return Outcome{Kind: OutcomeCheckerError, Reason: "check failed: " + reason}
}

// Next computes the state following an outcome. A checker error counts as
// unhealthy: an unreachable resource is operationally indistinguishable from
// a failing one. The distinction survives in the outcome's reason.
func Next(outcome Outcome) State {
	if outcome.Kind == OutcomeHealthy {
		return StateHealthy
	}
	return StateUnhealthy
}

// NotifyWorthy reports whether moving from prev to next warrants an alert.
// Every state change is notify-worthy, including the initial transition out
// of StateUnknown; repeated identical states never are.
func NotifyWorthy(prev, next State) bool {
	return prev != next
}
