package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// DeliveryRecorder persists the outcome of a background send attempt.
// Satisfied by repository.MessageRepository.
type DeliveryRecorder interface {
	SetDeliveryResult(ctx context.Context, id string, sendErr error) error
}

const sendTimeout = 30 * time.Second

// Dispatcher runs the background notification queue. Intake hands accepted
// messages to Enqueue and returns to its caller immediately; a single worker
// goroutine performs the send on its own context, detached from the request
// that triggered it, and records the outcome on the message row.
type Dispatcher struct {
	notifier Notifier
	recorder DeliveryRecorder
	inbox    string
	logger   *slog.Logger

	jobs chan *model.Message
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher delivering to the operator inbox and
// starts its worker. queueSize bounds the number of pending notifications;
// an overflowing queue marks messages failed rather than blocking intake.
func NewDispatcher(notifier Notifier, recorder DeliveryRecorder, inbox string, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 16
	}
	d := &Dispatcher{
		notifier: notifier,
		recorder: recorder,
		inbox:    inbox,
		logger:   logger,
		jobs:     make(chan *model.Message, queueSize),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue schedules the operator notification for an already-persisted
// message. It never blocks: if the queue is full the message is marked
// failed immediately, the same bookkeeping a send failure gets.
func (d *Dispatcher) Enqueue(msg *model.Message) {
	select {
	case d.jobs <- msg:
	default:
		d.logger.Warn("notification queue full, marking failed", "id", msg.ID)
		d.record(msg.ID, fmt.Errorf("notification queue full"))
	}
}

// Close drains pending notifications and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.jobs) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := d.notifier.Send(ctx, IntakeEnvelope(msg, d.inbox))
		cancel()

		if err != nil {
			d.logger.Error("operator notification failed", "id", msg.ID, "error", err)
		} else {
			d.logger.Info("operator notified", "id", msg.ID)
		}
		d.record(msg.ID, err)
	}
}

func (d *Dispatcher) record(id string, sendErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.recorder.SetDeliveryResult(ctx, id, sendErr); err != nil {
		// The message itself is safe in the store; only the delivery marker
		// is stale. Nothing to do beyond logging.
		d.logger.Error("failed to record delivery result", "id", id, "error", err)
	}
}

// IntakeEnvelope builds the operator-facing notification for a new
// submission. Reply-to points at the sender so the operator can answer from
// their mail client directly.
func IntakeEnvelope(msg *model.Message, inbox string) Envelope {
	subject := "New Portfolio Contact from " + msg.Name
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Name: %s\n", msg.Name)
	fmt.Fprintf(&text, "Email: %s\n", msg.Email)
	if msg.Subject != "" {
		fmt.Fprintf(&text, "Subject: %s\n", msg.Subject)
	}
	fmt.Fprintf(&text, "\n%s\n", msg.Message)
	fmt.Fprintf(&text, "\nReceived at: %s\n", msg.CreatedAt.Format(time.RFC1123))

	return Envelope{
		To:      inbox,
		ReplyTo: msg.Email,
		Subject: subject,
		Text:    text.String(),
		// Intake already strips and escapes the stored fields, so the HTML
		// part must not escape them a second time.
		HTML: `<div style="font-family: Arial, sans-serif; padding: 20px;">` +
			strings.ReplaceAll(text.String(), "\n", "<br>") + `</div>`,
	}
}

// ReplyEnvelope builds an admin-authored reply addressed to the original
// sender.
func ReplyEnvelope(to, subject, body string) Envelope {
	return Envelope{
		To:      to,
		Subject: subject,
		Text:    body,
		HTML:    textToHTML(body),
	}
}

func textToHTML(s string) string {
	escaped := html.EscapeString(s)
	return `<div style="font-family: Arial, sans-serif; padding: 20px;">` +
		strings.ReplaceAll(escaped, "\n", "<br>") + `</div>`
}
