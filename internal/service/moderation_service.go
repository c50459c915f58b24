package service

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// ModerationService defines the authenticated admin workflow over stored
// contact messages.
type ModerationService interface {
	// List returns one page of messages, newest-first, optionally filtered
	// by status, together with pagination metadata. page is 1-indexed.
	List(ctx context.Context, page, limit int, status string) ([]*model.Message, model.Pagination, error)

	// Get returns a single message, or repository.ErrNotFound.
	Get(ctx context.Context, id string) (*model.Message, error)

	// SetStatus writes a new status and returns the updated message.
	// Returns ErrInvalidStatus if status is outside the canonical set,
	// repository.ErrNotFound if the id does not resolve. Transitions are not
	// otherwise restricted.
	SetStatus(ctx context.Context, id string, status string) (*model.Message, error)

	// Delete removes a message permanently, or returns repository.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Reply sends an admin-authored email to the message's sender and, on
	// delivery success, transitions the message to replied. A delivery
	// failure leaves the status unchanged and is returned to the caller.
	// ErrReplyNotMarked means the email was sent but the status write
	// failed; the returned message still carries its previous status.
	Reply(ctx context.Context, id, subject, body string) (*model.Message, error)

	// Stats returns per-status counts for the dashboard.
	Stats(ctx context.Context) (model.Stats, error)
}
