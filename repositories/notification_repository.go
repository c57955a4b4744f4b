package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/lib/pq"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id, userID int) error
	CountUnread(ctx context.Context, userID int) (int, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal notification metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (user_id, type, title, body, metadata, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		metadata,
		n.ExpiresAt,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID int, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, metadata, read, created_at, expires_at
		FROM notifications
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $2`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var metadata []byte
		if scanErr := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body,
			&metadata, &n.Read, &n.CreatedAt, &n.ExpiresAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if len(metadata) > 0 {
			if unmarshalErr := json.Unmarshal(metadata, &n.Metadata); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for notification %d: %w", n.ID, unmarshalErr)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	return err
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, id, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE AND expires_at > NOW()`,
		userID).Scan(&count)
	return count, err
}

// DeleteExpired removes notifications past their TTL. Stands in for a
// document-store TTL index; runs from the background cleanup pass.
func (r *postgresNotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
