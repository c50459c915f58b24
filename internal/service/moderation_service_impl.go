package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// moderationServiceImpl is the production implementation of ModerationService.
type moderationServiceImpl struct {
	repo     repository.MessageRepository
	notifier notify.Notifier
}

// NewModerationService creates a ModerationService backed by the given
// repository and notifier.
func NewModerationService(repo repository.MessageRepository, notifier notify.Notifier) ModerationService {
	return &moderationServiceImpl{repo: repo, notifier: notifier}
}

// List clamps the page window and delegates to the repository.
func (s *moderationServiceImpl) List(ctx context.Context, page, limit int, status string) ([]*model.Message, model.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	messages, total, err := s.repo.List(ctx, model.ListOptions{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}

	pages := (total + limit - 1) / limit
	return messages, model.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

func (s *moderationServiceImpl) Get(ctx context.Context, id string) (*model.Message, error) {
	return s.repo.Get(ctx, id)
}

func (s *moderationServiceImpl) SetStatus(ctx context.Context, id string, status string) (*model.Message, error) {
	st := model.Status(status)
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, st)
}

func (s *moderationServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Reply loads the message for the recipient address, sends synchronously on
// the caller's context, and marks the message replied only after the send
// succeeded. Unlike intake's background notification, a failure here is
// returned to the admin directly.
func (s *moderationServiceImpl) Reply(ctx context.Context, id, subject, body string) (*model.Message, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, notify.ReplyEnvelope(msg.Email, subject, body)); err != nil {
		return nil, fmt.Errorf("send reply: %w", err)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.StatusReplied)
	if err != nil {
		// The reply left the building; only the bookkeeping is behind. Return
		// the message with the sentinel so the caller can report the partial
		// outcome instead of a clean success.
		slog.Error("reply sent but status update failed", "id", id, "error", err)
		return msg, ErrReplyNotMarked
	}
	return updated, nil
}

// Stats projects CountByStatus into the dashboard aggregate.
func (s *moderationServiceImpl) Stats(ctx context.Context) (model.Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	stats := model.Stats{
		New:      counts[model.StatusNew],
		Read:     counts[model.StatusRead],
		Replied:  counts[model.StatusReplied],
		Archived: counts[model.StatusArchived],
		Failed:   counts[model.StatusFailed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
