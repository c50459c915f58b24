package service

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// IntakeService defines the business logic for contact form submissions.
type IntakeService interface {
	// Submit sanitizes and stores a new contact message, then schedules the
	// operator notification. msg.ID and timestamps are populated by the
	// implementation. An error means nothing was stored and no notification
	// will be attempted.
	Submit(ctx context.Context, msg *model.Message) error
}
