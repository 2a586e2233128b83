package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = "id, recipient_id, title, body, link, kind, is_read, created_at"

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Notification, error) {
	var n models.Notification
	var body, link sql.NullString
	var isRead interface{}
	var createdRaw []byte

	err := scanner.Scan(&n.ID, &n.RecipientID, &n.Title, &body, &link, &n.Kind, &isRead, &createdRaw)
	if err != nil {
		return nil, err
	}

	if body.Valid {
		n.Body = body.String
	}
	n.Link = strPtr(link)
	n.IsRead = toBool(isRead)
	n.CreatedAt = parseTime(createdRaw)
	return &n, nil
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, recipient_id, title, body, link, kind, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NOW())
	`, constants.TableNotifications)

	_, err := r.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Title, n.Body, n.Link, n.Kind)
	return err
}

// ListByRecipient returns a user's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE recipient_id = ? ORDER BY created_at DESC LIMIT ?",
		notificationColumns, constants.TableNotifications)
	if unreadOnly {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE recipient_id = ? AND is_read = 0 ORDER BY created_at DESC LIMIT ?",
			notificationColumns, constants.TableNotifications)
	}

	rows, err := r.db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount counts a user's unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE recipient_id = ? AND is_read = 0", constants.TableNotifications)
	var count int
	err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&count)
	return count, err
}

// MarkRead flags one notification as read, scoped to its recipient
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_read = 1 WHERE id = ? AND recipient_id = ?", constants.TableNotifications)
	_, err := r.db.ExecContext(ctx, query, id, recipientID)
	return err
}

// MarkAllRead flags every notification for a recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_read = 1 WHERE recipient_id = ? AND is_read = 0", constants.TableNotifications)
	_, err := r.db.ExecContext(ctx, query, recipientID)
	return err
}
