package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubNotifier struct {
	sendFunc func(ctx context.Context, env Envelope) error
}

func (s *stubNotifier) Send(ctx context.Context, env Envelope) error {
	if s.sendFunc != nil {
		return s.sendFunc(ctx, env)
	}
	return nil
}

// recorderSpy collects delivery outcomes keyed by message id. Safe for use
// from the worker goroutine.
type recorderSpy struct {
	mu       sync.Mutex
	outcomes map[string]error
}

func newRecorderSpy() *recorderSpy {
	return &recorderSpy{outcomes: make(map[string]error)}
}

func (r *recorderSpy) SetDeliveryResult(ctx context.Context, id string, sendErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[id] = sendErr
	return nil
}

func (r *recorderSpy) outcome(id string) (error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err, ok := r.outcomes[id]
	return err, ok
}

// ---------------------------------------------------------------------------
// Dispatcher tests
// ---------------------------------------------------------------------------

func TestDispatcher_SuccessRecorded(t *testing.T) {
	recorder := newRecorderSpy()
	var sent Envelope
	notifier := &stubNotifier{
		sendFunc: func(ctx context.Context, env Envelope) error {
			sent = env
			return nil
		},
	}
	d := NewDispatcher(notifier, recorder, "inbox@site.com", 4, discardLogger())

	d.Enqueue(&model.Message{ID: "m1", Name: "Ava", Email: "ava@x.com", Message: "Hi"})
	d.Close()

	err, ok := recorder.outcome("m1")
	if !ok {
		t.Fatal("expected a delivery outcome for m1")
	}
	if err != nil {
		t.Errorf("expected nil outcome on success, got %v", err)
	}
	if sent.To != "inbox@site.com" || sent.ReplyTo != "ava@x.com" {
		t.Errorf("unexpected envelope routing: %+v", sent)
	}
}

func TestDispatcher_FailureRecorded(t *testing.T) {
	recorder := newRecorderSpy()
	notifier := &stubNotifier{
		sendFunc: func(ctx context.Context, env Envelope) error {
			return errors.New("smtp refused")
		},
	}
	d := NewDispatcher(notifier, recorder, "inbox@site.com", 4, discardLogger())

	d.Enqueue(&model.Message{ID: "m1", Email: "ava@x.com"})
	d.Close()

	err, ok := recorder.outcome("m1")
	if !ok {
		t.Fatal("expected a delivery outcome for m1")
	}
	if err == nil || err.Error() != "smtp refused" {
		t.Errorf("expected the send error recorded, got %v", err)
	}
}

// TestDispatcher_CloseDrains verifies every queued message is attempted
// before Close returns.
func TestDispatcher_CloseDrains(t *testing.T) {
	recorder := newRecorderSpy()
	d := NewDispatcher(&stubNotifier{}, recorder, "inbox@site.com", 8, discardLogger())

	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	for _, id := range ids {
		d.Enqueue(&model.Message{ID: id, Email: "x@y.com"})
	}
	d.Close()

	for _, id := range ids {
		if _, ok := recorder.outcome(id); !ok {
			t.Errorf("expected an outcome for %s after Close", id)
		}
	}
}

// TestDispatcher_OverflowMarksFailed fills the queue behind a blocked send
// and verifies the overflowing message is marked failed without blocking.
func TestDispatcher_OverflowMarksFailed(t *testing.T) {
	recorder := newRecorderSpy()
	sendStarted := make(chan struct{})
	release := make(chan struct{})
	notifier := &stubNotifier{
		sendFunc: func(ctx context.Context, env Envelope) error {
			select {
			case sendStarted <- struct{}{}:
			default:
			}
			<-release
			return nil
		},
	}
	d := NewDispatcher(notifier, recorder, "inbox@site.com", 1, discardLogger())

	// First message is picked up by the worker and blocks inside Send.
	d.Enqueue(&model.Message{ID: "m1", Email: "x@y.com"})
	select {
	case <-sendStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never started the first send")
	}

	// Second fills the single buffer slot; third must overflow.
	d.Enqueue(&model.Message{ID: "m2", Email: "x@y.com"})
	d.Enqueue(&model.Message{ID: "m3", Email: "x@y.com"})

	err, ok := recorder.outcome("m3")
	if !ok {
		t.Fatal("expected overflow outcome for m3 immediately")
	}
	if err == nil || !strings.Contains(err.Error(), "queue full") {
		t.Errorf("expected a queue-full failure, got %v", err)
	}

	close(release)
	d.Close()

	for _, id := range []string{"m1", "m2"} {
		if err, ok := recorder.outcome(id); !ok || err != nil {
			t.Errorf("expected %s delivered after release, got ok=%v err=%v", id, ok, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Envelope builders
// ---------------------------------------------------------------------------

func TestIntakeEnvelope(t *testing.T) {
	msg := &model.Message{
		ID:        "m1",
		Name:      "Ava",
		Email:     "ava@x.com",
		Subject:   "Project inquiry",
		Message:   "Hello there",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env := IntakeEnvelope(msg, "inbox@site.com")

	if env.To != "inbox@site.com" {
		t.Errorf("expected inbox recipient, got %q", env.To)
	}
	if env.ReplyTo != "ava@x.com" {
		t.Errorf("expected reply-to at sender, got %q", env.ReplyTo)
	}
	if env.Subject != "New Portfolio Contact from Ava: Project inquiry" {
		t.Errorf("unexpected subject %q", env.Subject)
	}
	for _, want := range []string{"Name: Ava", "Email: ava@x.com", "Hello there"} {
		if !strings.Contains(env.Text, want) {
			t.Errorf("expected text body to contain %q:\n%s", want, env.Text)
		}
	}
	if !strings.Contains(env.HTML, "Hello there<br>") {
		t.Errorf("expected HTML body with <br> line breaks:\n%s", env.HTML)
	}
}

func TestIntakeEnvelope_NoSubject(t *testing.T) {
	env := IntakeEnvelope(&model.Message{Name: "Ava", Email: "ava@x.com"}, "inbox@site.com")
	if env.Subject != "New Portfolio Contact from Ava" {
		t.Errorf("unexpected subject %q", env.Subject)
	}
}

// TestReplyEnvelope verifies admin-authored text is escaped in the HTML part.
func TestReplyEnvelope(t *testing.T) {
	env := ReplyEnvelope("sender@x.com", "Re: hi", "a < b\nnext line")

	if env.To != "sender@x.com" || env.Subject != "Re: hi" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.Text != "a < b\nnext line" {
		t.Errorf("expected raw text body, got %q", env.Text)
	}
	if !strings.Contains(env.HTML, "a &lt; b<br>next line") {
		t.Errorf("expected escaped HTML with <br>, got %q", env.HTML)
	}
}
