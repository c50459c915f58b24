package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the submission credentials for the operator's provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends mail over authenticated STARTTLS SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates an SMTPNotifier with the given submission config.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

var _ Notifier = (*SMTPNotifier)(nil)

// Send builds a MIME message from the envelope and submits it. The client is
// dialed per call; at tens of messages a day a persistent connection would
// only go stale between sends.
func (n *SMTPNotifier) Send(ctx context.Context, env Envelope) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextPlain, env.Text)
	if env.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, env.HTML)
	}

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
