package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/alert"
)

// DryRunNotifier logs alerts without delivering them.
type DryRunNotifier struct {
	logger zerolog.Logger
	inner  Notifier
}

// NewDryRunNotifier returns a notifier that suppresses delivery and logs instead.
func NewDryRunNotifier(logger zerolog.Logger, inner Notifier) *DryRunNotifier {
	return &DryRunNotifier{logger: logger, inner: inner}
}

// Notify implements Notifier.
func (n *DryRunNotifier) Notify(_ context.Context, a alert.Alert) error {
	n.logger.Info().
		Str("resource", a.Resource).
		Str("previous_state", string(a.Previous)).
		Str("current_state", string(a.Current)).
		Str("reason", a.Reason).
		Msg("[DRY-RUN] Would notify")
	return nil
}
