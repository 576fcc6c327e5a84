// Package notification persists user notifications, serves a user's inbox
// and purges old read notifications on a schedule.
package notification

import (
	"context"
	"log/slog"

	"taskflow/internal/domain"
)

// Emitter implements domain.Notifier by storing notifications.
type Emitter struct {
	repo domain.NotificationRepository
}

// NewEmitter creates an Emitter backed by repo.
func NewEmitter(repo domain.NotificationRepository) *Emitter {
	return &Emitter{repo: repo}
}

// Notify stores n for its recipient.
func (e *Emitter) Notify(ctx context.Context, n *domain.Notification) error {
	if n.RecipientID == "" {
		return domain.ErrValidation("notification recipient is required")
	}
	if n.Severity == "" {
		n.Severity = domain.SeverityInfo
	}
	_, err := e.repo.Insert(ctx, n)
	return err
}

// Dispatch delivers n and logs a delivery failure instead of returning it.
// Workflow transitions have already committed when they notify, so a lost
// notification must never surface as a failed operation.
func Dispatch(ctx context.Context, notifier domain.Notifier, logger *slog.Logger, n *domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.Warn("notification delivery failed",
			"recipient", n.RecipientID, "title", n.Title, "error", err)
	}
}

// Link returns a pointer to path for use as Notification.LinkPath.
func Link(path string) *string {
	return &path
}
