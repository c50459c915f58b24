package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockMessageRepository struct {
	createFunc        func(ctx context.Context, msg *model.Message) error
	getFunc           func(ctx context.Context, id string) (*model.Message, error)
	listFunc          func(ctx context.Context, opts model.ListOptions) ([]*model.Message, int, error)
	updateStatusFunc  func(ctx context.Context, id string, status model.Status) (*model.Message, error)
	deliveryFunc      func(ctx context.Context, id string, sendErr error) error
	deleteFunc        func(ctx context.Context, id string) error
	countByStatusFunc func(ctx context.Context) (map[model.Status]int, error)
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) Get(ctx context.Context, id string) (*model.Message, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockMessageRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.Message, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, 0, nil
}

func (m *mockMessageRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Message, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, nil
}

func (m *mockMessageRepository) SetDeliveryResult(ctx context.Context, id string, sendErr error) error {
	if m.deliveryFunc != nil {
		return m.deliveryFunc(ctx, id, sendErr)
	}
	return nil
}

func (m *mockMessageRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockMessageRepository) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return nil, nil
}

type mockQueue struct {
	enqueued []*model.Message
}

func (q *mockQueue) Enqueue(msg *model.Message) {
	q.enqueued = append(q.enqueued, msg)
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestIntakeService_Submit_SetsNewStatusAndTimestamps(t *testing.T) {
	before := time.Now().UTC()
	var saved *model.Message
	repo := &mockMessageRepository{
		createFunc: func(ctx context.Context, msg *model.Message) error {
			saved = msg
			return nil
		},
	}
	svc := NewIntakeService(repo, &mockQueue{})

	msg := &model.Message{Name: "Ava", Email: "ava@x.com", Message: "Hi"}
	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := time.Now().UTC()
	if saved == nil {
		t.Fatal("expected Create to be called")
	}
	if saved.Status != model.StatusNew {
		t.Errorf("expected status=new, got %q", saved.Status)
	}
	if saved.CreatedAt.Before(before) || saved.CreatedAt.After(after) {
		t.Errorf("CreatedAt %v not in expected range [%v, %v]", saved.CreatedAt, before, after)
	}
}

// TestIntakeService_Submit_Sanitizes verifies tags are stripped, the rest
// escaped, and the email lowercased before persistence.
func TestIntakeService_Submit_Sanitizes(t *testing.T) {
	var saved *model.Message
	repo := &mockMessageRepository{
		createFunc: func(ctx context.Context, msg *model.Message) error {
			saved = msg
			return nil
		},
	}
	svc := NewIntakeService(repo, &mockQueue{})

	msg := &model.Message{
		Name:    `<b>Ava</b>`,
		Email:   "  AVA@X.COM ",
		Subject: `<script>alert(1)</script>hello`,
		Message: `Tom & "Jerry" <img src=x`,
	}
	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Name != "Ava" {
		t.Errorf("expected tags stripped from name, got %q", saved.Name)
	}
	if saved.Email != "ava@x.com" {
		t.Errorf("expected lowercased trimmed email, got %q", saved.Email)
	}
	if saved.Subject != "alert(1)hello" {
		t.Errorf("expected script tags stripped from subject, got %q", saved.Subject)
	}
	if saved.Message != "Tom &amp; &#34;Jerry&#34;" {
		t.Errorf("expected escaped message, got %q", saved.Message)
	}
}

// TestIntakeService_Submit_EnqueuesAfterPersist verifies exactly one
// notification is scheduled, and only after Create succeeded.
func TestIntakeService_Submit_EnqueuesAfterPersist(t *testing.T) {
	queue := &mockQueue{}
	created := false
	repo := &mockMessageRepository{
		createFunc: func(ctx context.Context, msg *model.Message) error {
			created = true
			if len(queue.enqueued) != 0 {
				t.Error("notification enqueued before Create returned")
			}
			return nil
		},
	}
	svc := NewIntakeService(repo, queue)

	msg := &model.Message{Name: "Ava", Email: "ava@x.com", Message: "Hi"}
	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected Create to be called")
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected exactly 1 enqueued notification, got %d", len(queue.enqueued))
	}
	if queue.enqueued[0] != msg {
		t.Error("expected the persisted message to be enqueued")
	}
}

// TestIntakeService_Submit_StorageFailure verifies no notification is
// attempted when persistence fails, and the error propagates.
func TestIntakeService_Submit_StorageFailure(t *testing.T) {
	queue := &mockQueue{}
	repo := &mockMessageRepository{
		createFunc: func(ctx context.Context, msg *model.Message) error {
			return errors.New("disk full")
		},
	}
	svc := NewIntakeService(repo, queue)

	msg := &model.Message{Name: "Ava", Email: "ava@x.com", Message: "Hi"}
	if err := svc.Submit(context.Background(), msg); err == nil {
		t.Error("expected error from repository, got nil")
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("expected no notification on storage failure, got %d", len(queue.enqueued))
	}
}
