package notify

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/config"
)

// BuildNotifiers constructs one notifier per configured channel, keyed by
// name. With dryRun set, every notifier is wrapped so deliveries are logged
// instead of sent. Construction failures are configuration errors and abort
// startup.
func BuildNotifiers(logger zerolog.Logger, registry *Registry, defs []config.Notifier, dryRun bool) (map[string]Notifier, error) {
	notifiers := make(map[string]Notifier, len(defs))
	for _, def := range defs {
		channelLogger := logger.With().Str("notifier", def.Name).Logger()
		notifier, err := registry.New(def.Type, channelLogger, def.Config)
		if err != nil {
			return nil, fmt.Errorf("notifier %q: %w", def.Name, err)
		}
		if dryRun {
			notifier = NewDryRunNotifier(channelLogger, notifier)
		}
		notifiers[def.Name] = notifier
	}
	return notifiers, nil
}
