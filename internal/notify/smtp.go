package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"gopkg.in/yaml.v3"

	"github.com/Flowneee/sentinel/internal/alert"
)

// emailIdent is one email address with an optional display name.
type emailIdent struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name,omitempty"`
}

type smtpConfig struct {
	Host       string       `yaml:"host"`
	Port       int          `yaml:"port,omitempty"`
	Login      string       `yaml:"login"`
	Password   string       `yaml:"pwd"`
	Ident      string       `yaml:"ident,omitempty"`
	Recipients []emailIdent `yaml:"recipients"`
}

// SMTPNotifier delivers alerts as plain-text emails. One message per alert is
// sent to all configured recipients.
type SMTPNotifier struct {
	logger     zerolog.Logger
	client     *mail.Client
	from       emailIdent
	recipients []emailIdent
}

// NewSMTPNotifier builds an SMTP notifier from a channel's config section.
// The sender address is the login, with the optional ident as display name.
func NewSMTPNotifier(logger zerolog.Logger, cfg yaml.Node) (Notifier, error) {
	var parsed smtpConfig
	if err := cfg.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode smtp notifier config: %w", err)
	}
	if parsed.Host == "" {
		return nil, errors.New("smtp notifier: host is required")
	}
	if parsed.Login == "" {
		return nil, errors.New("smtp notifier: login is required")
	}
	if len(parsed.Recipients) == 0 {
		return nil, errors.New("smtp notifier: at least one recipient is required")
	}
	for i, recipient := range parsed.Recipients {
		if recipient.Address == "" {
			return nil, fmt.Errorf("smtp notifier: recipient %d: address is required", i)
		}
	}

	options := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(parsed.Login),
		mail.WithPassword(parsed.Password),
	}
	if parsed.Port > 0 {
		options = append(options, mail.WithPort(parsed.Port))
	}

	client, err := mail.NewClient(parsed.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("smtp notifier: create client: %w", err)
	}

	return &SMTPNotifier{
		logger:     logger,
		client:     client,
		from:       emailIdent{Address: parsed.Login, Name: parsed.Ident},
		recipients: parsed.Recipients,
	}, nil
}

// Notify implements Notifier.
func (n *SMTPNotifier) Notify(ctx context.Context, a alert.Alert) error {
	msg, err := n.buildMessage(a)
	if err != nil {
		return err
	}

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	n.logger.Debug().
		Str("resource", a.Resource).
		Int("recipients", len(n.recipients)).
		Msg("alert email sent")

	return nil
}

func (n *SMTPNotifier) buildMessage(a alert.Alert) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if n.from.Name != "" {
		if err := msg.FromFormat(n.from.Name, n.from.Address); err != nil {
			return nil, fmt.Errorf("set sender: %w", err)
		}
	} else if err := msg.From(n.from.Address); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}

	for _, recipient := range n.recipients {
		if recipient.Name != "" {
			if err := msg.AddToFormat(recipient.Name, recipient.Address); err != nil {
				return nil, fmt.Errorf("add recipient %q: %w", recipient.Address, err)
			}
			continue
		}
		if err := msg.AddTo(recipient.Address); err != nil {
			return nil, fmt.Errorf("add recipient %q: %w", recipient.Address, err)
		}
	}

	msg.Subject(a.Title())
	msg.SetBodyString(mail.TypeTextPlain, a.Body())
	return msg, nil
}
