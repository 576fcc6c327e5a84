package notification

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/service/security"
)

// Service exposes the current actor's notifications.
type Service struct {
	repo domain.NotificationRepository
}

// NewService creates a new Service.
func NewService(repo domain.NotificationRepository) *Service {
	return &Service{repo: repo}
}

// ListMine returns a page of the actor's notifications, newest first.
func (s *Service) ListMine(ctx context.Context, unreadOnly bool, page domain.PageRequest) ([]domain.Notification, int64, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListForRecipient(ctx, actor.ID, unreadOnly, page)
}

// MarkRead marks one of the actor's notifications as read. Notifications
// addressed to someone else are reported as not found.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, actor.ID, id)
}

// MarkAllRead marks all of the actor's notifications as read and returns
// how many changed.
func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, actor.ID)
}
