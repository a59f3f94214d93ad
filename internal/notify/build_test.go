package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/alert"
	"github.com/Flowneee/sentinel/internal/config"
	"github.com/Flowneee/sentinel/internal/health"
)

func TestBuildNotifiers_UnknownType(t *testing.T) {
	defs := []config.Notifier{{Name: "pager", Type: "carrier-pigeon"}}
	if _, err := BuildNotifiers(zerolog.Nop(), DefaultRegistry(), defs, false); err == nil {
		t.Fatalf("expected error for unknown notifier type")
	}
}

func TestBuildNotifiers_NoopType(t *testing.T) {
	defs := []config.Notifier{{Name: "drop", Type: "noop"}}
	notifiers, err := BuildNotifiers(zerolog.Nop(), DefaultRegistry(), defs, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := notifiers["drop"].(*NoopNotifier); !ok {
		t.Fatalf("expected noop notifier, got %T", notifiers["drop"])
	}
}

func TestBuildNotifiers_DryRunWrapsEverything(t *testing.T) {
	defs := []config.Notifier{{Name: "drop", Type: "noop"}}
	notifiers, err := BuildNotifiers(zerolog.Nop(), DefaultRegistry(), defs, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dryRun, ok := notifiers["drop"].(*DryRunNotifier)
	if !ok {
		t.Fatalf("expected dry-run wrapper, got %T", notifiers["drop"])
	}

	a := alert.New("api", health.StateUnknown, health.StateHealthy, "", time.Now())
	if err := dryRun.Notify(context.Background(), a); err != nil {
		t.Fatalf("dry-run notify failed: %v", err)
	}
}

func TestRegistry_PropagatesFactoryErrors(t *testing.T) {
	registry := DefaultRegistry()
	if _, err := registry.New("slack", zerolog.Nop(), yaml.Node{}); err == nil {
		t.Fatalf("expected error for empty slack config")
	}
}
