package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/alert"
	"github.com/Flowneee/sentinel/internal/health"
)

const defaultWebhookTemplate = `{"resource":"{{ .Resource }}","previous":"{{ .Previous }}","current":"{{ .Current }}","reason":{{ toJson .Reason }},"time":"{{ .Time }}"}`

type webhookConfig struct {
	URL      string `yaml:"url"`
	Template string `yaml:"template,omitempty"`
}

// WebhookPayload is the template context for webhook notifications.
type WebhookPayload struct {
	Resource string
	Previous health.State
	Current  health.State
	Reason   string
	Time     string
}

// WebhookNotifier posts alerts to a generic webhook, rendered through a
// configurable template.
type WebhookNotifier struct {
	logger   zerolog.Logger
	template *template.Template
	poster   *httpPoster
}

// NewWebhookNotifier builds a webhook notifier from a channel's config section.
func NewWebhookNotifier(logger zerolog.Logger, cfg yaml.Node) (Notifier, error) {
	var parsed webhookConfig
	if err := cfg.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode webhook notifier config: %w", err)
	}
	if parsed.URL == "" {
		return nil, errors.New("webhook notifier: url is required")
	}
	return newWebhookNotifier(logger, parsed.URL, parsed.Template)
}

func newWebhookNotifier(logger zerolog.Logger, webhookURL, tmpl string) (*WebhookNotifier, error) {
	if tmpl == "" {
		tmpl = defaultWebhookTemplate
	}

	parsed, err := template.New("webhook").Funcs(template.FuncMap{
		"toJson": func(v any) (string, error) {
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(encoded), nil
		},
	}).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse webhook template: %w", err)
	}

	return &WebhookNotifier{
		logger:   logger,
		template: parsed,
		poster:   newHTTPPoster(logger, "webhook", webhookURL, "application/json", defaultTiming),
	}, nil
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, a alert.Alert) error {
	if err := n.poster.waitForRateLimit(ctx, a.Resource); err != nil {
		return err
	}

	payload := WebhookPayload{
		Resource: a.Resource,
		Previous: a.Previous,
		Current:  a.Current,
		Reason:   a.Reason,
		Time:     a.Time.Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := n.template.Execute(&buf, payload); err != nil {
		return fmt.Errorf("render webhook template: %w", err)
	}

	if err := n.poster.postWithRetry(ctx, buf.Bytes()); err != nil {
		return err
	}

	n.logger.Debug().
		Str("resource", a.Resource).
		Str("current_state", string(a.Current)).
		Msg("webhook notification sent")

	return nil
}
