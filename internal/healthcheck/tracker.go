package healthcheck

import (
	"sync"
	"time"
)

// Snapshot describes the latest probe activity.
type Snapshot struct {
	LastCheckTime      *time.Time `json:"last_check_time"`
	CheckDurationMS    int64      `json:"check_duration_ms"`
	ResourcesMonitored int        `json:"resources_monitored"`
}

// Tracker records probe activity across all monitors for the process's own
// liveness and readiness endpoints.
type Tracker struct {
	mu                 sync.RWMutex
	lastCheck          time.Time
	checkDuration      time.Duration
	resourcesMonitored int
	ready              bool
}

// NewTracker constructs a Tracker for the given number of monitored resources.
func NewTracker(resources int) *Tracker {
	return &Tracker{resourcesMonitored: resources}
}

// RecordCheck updates probe timing and readiness.
func (t *Tracker) RecordCheck(duration time.Duration) {
	if t == nil {
		return
	}
	now := time.Now().UTC()
	t.mu.Lock()
	t.lastCheck = now
	t.checkDuration = duration
	t.ready = true
	t.mu.Unlock()
}

// Snapshot returns the current tracker snapshot.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var last *time.Time
	if !t.lastCheck.IsZero() {
		value := t.lastCheck
		last = &value
	}
	return Snapshot{
		LastCheckTime:      last,
		CheckDurationMS:    int64(t.checkDuration / time.Millisecond),
		ResourcesMonitored: t.resourcesMonitored,
	}
}

// Ready reports whether at least one probe has completed.
func (t *Tracker) Ready() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

// Healthy reports whether some probe completed within 2x the largest
// configured check interval.
func (t *Tracker) Healthy(now time.Time, maxInterval time.Duration) bool {
	if t == nil {
		return false
	}
	if maxInterval <= 0 {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastCheck.IsZero() {
		return false
	}
	return now.Sub(t.lastCheck) <= 2*maxInterval
}
