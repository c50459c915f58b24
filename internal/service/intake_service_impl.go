package service

import (
	"context"
	"time"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
)

// NotificationQueue schedules the background operator notification for an
// accepted message. Satisfied by notify.Dispatcher.
type NotificationQueue interface {
	Enqueue(msg *model.Message)
}

// intakeServiceImpl is the production implementation of IntakeService.
type intakeServiceImpl struct {
	repo  repository.MessageRepository
	queue NotificationQueue
}

// NewIntakeService creates an IntakeService backed by the given repository
// and notification queue.
func NewIntakeService(repo repository.MessageRepository, queue NotificationQueue) IntakeService {
	return &intakeServiceImpl{repo: repo, queue: queue}
}

// Submit persists the message with status new, then enqueues the operator
// notification. Persistence happens strictly first: if Create fails the
// caller gets the error and no notification is attempted, so a failed submit
// can never produce a stray email. Once Create succeeds the submission is
// accepted regardless of what later happens to the notification.
func (s *intakeServiceImpl) Submit(ctx context.Context, msg *model.Message) error {
	now := time.Now().UTC()
	msg.Name = sanitize(msg.Name)
	msg.Email = sanitizeEmail(msg.Email)
	msg.Subject = sanitize(msg.Subject)
	msg.Message = sanitize(msg.Message)
	msg.Status = model.StatusNew
	msg.CreatedAt = now
	msg.UpdatedAt = now

	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}

	s.queue.Enqueue(msg)
	return nil
}
