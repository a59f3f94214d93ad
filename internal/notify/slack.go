package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/alert"
)

type slackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// SlackNotifier posts alerts to a Slack incoming webhook.
type SlackNotifier struct {
	logger zerolog.Logger
	poster *httpPoster
}

// SlackOption customizes SlackNotifier behavior.
type SlackOption func(*SlackNotifier)

// WithSlackTiming overrides timing parameters (primarily for testing).
func WithSlackTiming(timing timingConfig) SlackOption {
	return func(s *SlackNotifier) {
		s.poster.timing = timing
	}
}

// NewSlackNotifier builds a Slack notifier from a channel's config section.
func NewSlackNotifier(logger zerolog.Logger, cfg yaml.Node) (Notifier, error) {
	var parsed slackConfig
	if err := cfg.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode slack notifier config: %w", err)
	}
	if parsed.WebhookURL == "" {
		return nil, errors.New("slack notifier: webhook_url is required")
	}
	return newSlackNotifier(logger, parsed.WebhookURL), nil
}

func newSlackNotifier(logger zerolog.Logger, webhookURL string, opts ...SlackOption) *SlackNotifier {
	notifier := &SlackNotifier{
		logger: logger,
		poster: newHTTPPoster(logger, "slack", webhookURL, "application/json", defaultTiming),
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, a alert.Alert) error {
	if err := n.poster.waitForRateLimit(ctx, a.Resource); err != nil {
		return err
	}

	payload, err := json.Marshal(buildSlackMessage(a))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	if err := n.poster.postWithRetry(ctx, payload); err != nil {
		return err
	}

	n.logger.Debug().
		Str("resource", a.Resource).
		Str("current_state", string(a.Current)).
		Msg("slack notification sent")

	return nil
}

func buildSlackMessage(a alert.Alert) slack.WebhookMessage {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", a.Title(), false, false))
	transition := slack.NewTextBlockObject("mrkdwn",
		fmt.Sprintf("*%s*: `%s` → `%s`", a.Resource, a.Previous, a.Current), false, false)

	fields := make([]*slack.TextBlockObject, 0, 2)
	if a.Reason != "" {
		fields = append(fields, slack.NewTextBlockObject("mrkdwn", "*Reason:*\n"+a.Reason, false, false))
	}
	fields = append(fields, slack.NewTextBlockObject("mrkdwn",
		"*Observed:*\n"+a.Time.Format(time.RFC3339), false, false))

	blocks := slack.Blocks{BlockSet: []slack.Block{
		header,
		slack.NewSectionBlock(transition, fields, nil),
	}}
	return slack.WebhookMessage{
		Text:   a.Title(),
		Blocks: &blocks,
	}
}
