package repository

import (
	"context"
	"database/sql"
	"time"

	"taskflow/internal/domain"
)

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implements domain.NotificationRepository using SQLite.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, recipient_id, title, body, severity, link_path, is_read, created_at`

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n        domain.Notification
		severity string
		link     sql.NullString
		read     int64
	)
	if err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &severity, &link, &read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Severity = domain.Severity(severity)
	n.LinkPath = stringPtr(link)
	n.Read = read != 0
	return &n, nil
}

// Insert stores a notification.
func (r *NotificationRepo) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.ID == "" {
		n.ID = domain.NewID()
	}
	if n.Severity == "" {
		n.Severity = domain.SeverityInfo
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, title, body, severity, link_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.RecipientID, n.Title, n.Body, string(n.Severity), nullString(n.LinkPath))
	if err != nil {
		return nil, mapDBError(err)
	}
	out, err := scanNotification(r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, n.ID))
	return out, mapDBError(err)
}

// ListForRecipient returns a page of a user's notifications, newest first.
func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, page domain.PageRequest) ([]domain.Notification, int64, error) {
	clause := ` WHERE recipient_id = ?`
	if unreadOnly {
		clause += ` AND is_read = 0`
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+clause, recipientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications`+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		recipientID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// MarkRead marks one of the recipient's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`, id, recipientID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("notification %s not found", id)
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`, recipientID)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

// PurgeReadBefore deletes read notifications created before the cutoff.
func (r *NotificationRepo) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, formatTime(before))
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

