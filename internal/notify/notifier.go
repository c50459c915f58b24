// Package notify delivers outbound email for the contact backend: the
// operator notification triggered by every intake submission, and the
// admin-composed replies sent back to message senders.
package notify

import (
	"context"
	"log/slog"
)

// Envelope is the recipient/subject/body package handed to a Notifier.
// HTML is optional; when present it is sent as a multipart alternative.
type Envelope struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Notifier is the capability to transmit a single message. Send returning
// nil means the upstream accepted the message, not that it was delivered.
type Notifier interface {
	Send(ctx context.Context, env Envelope) error
}

// LogNotifier is the development fallback used when SMTP is not configured.
// It logs the envelope instead of sending it and always succeeds.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(_ context.Context, env Envelope) error {
	n.Logger.Info("email delivery skipped (SMTP not configured)",
		"to", env.To,
		"subject", env.Subject,
	)
	return nil
}
