package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/alert"
	"github.com/Flowneee/sentinel/internal/health"
)

type fakeNotifier struct {
	mu       sync.Mutex
	alerts   []alert.Alert
	err      error
	panicMsg string
	release  chan struct{}
	notified chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan struct{}, 16)}
}

func (f *fakeNotifier) Notify(ctx context.Context, a alert.Alert) error {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}

	f.mu.Lock()
	f.alerts = append(f.alerts, a)
	f.mu.Unlock()
	f.notified <- struct{}{}
	return f.err
}

func (f *fakeNotifier) deliveries() []alert.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alert.Alert(nil), f.alerts...)
}

func waitNotified(t *testing.T, f *fakeNotifier) {
	t.Helper()
	select {
	case <-f.notified:
	case <-time.After(time.Second):
		t.Fatalf("notifier was not invoked")
	}
}

func testAlert() alert.Alert {
	return alert.New("api", health.StateHealthy, health.StateUnhealthy, "non-successful HTTP code 500", time.Now())
}

func TestRouter_Bindings(t *testing.T) {
	router := NewRouter(zerolog.Nop(), map[string]Notifier{"mail": newFakeNotifier()})

	if err := router.Bindings([]string{"mail"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := router.Bindings([]string{"mail", "pager"}); err == nil {
		t.Fatalf("expected error for unresolved notifier name")
	}
}

func TestRouter_Dispatch_IsolatesFailures(t *testing.T) {
	failing := newFakeNotifier()
	failing.err = errors.New("smtp send failed")
	succeeding := newFakeNotifier()

	router := NewRouter(zerolog.Nop(), map[string]Notifier{
		"failing":    failing,
		"succeeding": succeeding,
	})

	router.Dispatch(testAlert(), []string{"failing", "succeeding"})

	waitNotified(t, succeeding)
	waitNotified(t, failing)
	router.Close(time.Second)

	if got := len(succeeding.deliveries()); got != 1 {
		t.Fatalf("expected exactly one successful delivery, got %d", got)
	}
}

func TestRouter_Dispatch_SurvivesNotifierPanic(t *testing.T) {
	panicking := newFakeNotifier()
	panicking.panicMsg = "boom"
	sibling := newFakeNotifier()

	router := NewRouter(zerolog.Nop(), map[string]Notifier{
		"panicking": panicking,
		"sibling":   sibling,
	})

	router.Dispatch(testAlert(), []string{"panicking", "sibling"})

	waitNotified(t, sibling)
	router.Close(time.Second)

	if got := len(sibling.deliveries()); got != 1 {
		t.Fatalf("expected sibling delivery, got %d", got)
	}
}

func TestRouter_Dispatch_DoesNotBlockCaller(t *testing.T) {
	slow := newFakeNotifier()
	slow.release = make(chan struct{})

	router := NewRouter(zerolog.Nop(), map[string]Notifier{"slow": slow})

	start := time.Now()
	router.Dispatch(testAlert(), []string{"slow"})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("dispatch blocked for %v", elapsed)
	}

	close(slow.release)
	waitNotified(t, slow)
	router.Close(time.Second)
}

func TestRouter_Close_AbandonsStuckDeliveries(t *testing.T) {
	stuck := newFakeNotifier()
	stuck.release = make(chan struct{})
	defer close(stuck.release)

	router := NewRouter(zerolog.Nop(), map[string]Notifier{"stuck": stuck})
	router.Dispatch(testAlert(), []string{"stuck"})

	done := make(chan struct{})
	go func() {
		router.Close(50 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("close did not return after grace period")
	}
}

func TestRouter_Dispatch_AllBoundNotifiersReceive(t *testing.T) {
	first := newFakeNotifier()
	second := newFakeNotifier()
	unbound := newFakeNotifier()

	router := NewRouter(zerolog.Nop(), map[string]Notifier{
		"first":   first,
		"second":  second,
		"unbound": unbound,
	})

	a := testAlert()
	router.Dispatch(a, []string{"first", "second"})

	waitNotified(t, first)
	waitNotified(t, second)
	router.Close(time.Second)

	if len(unbound.deliveries()) != 0 {
		t.Fatalf("unbound notifier should not receive alerts")
	}
	if got := first.deliveries(); len(got) != 1 || got[0].Resource != a.Resource {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
}
