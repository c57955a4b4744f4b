package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/lib/pq"
)

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrMessageParentInvalid = errors.New("parent message not found")
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int) (*models.Message, error)
	ListByRoom(ctx context.Context, room string, limit int) ([]models.Message, error)
	SoftDelete(ctx context.Context, id int) error
	MarkDelivered(ctx context.Context, id int) error
	IncrementReplyCount(ctx context.Context, id int) error
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (room, sender_id, content, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, reply_count, deleted, delivered, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.Room,
		msg.SenderID,
		msg.Content,
		msg.ParentID,
	).Scan(&msg.ID, &msg.ReplyCount, &msg.Deleted, &msg.Delivered, &msg.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			if pqErr.Constraint == "messages_parent_id_fkey" {
				return ErrMessageParentInvalid
			}
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *postgresMessageRepository) GetByID(ctx context.Context, id int) (*models.Message, error) {
	query := `
		SELECT id, room, sender_id, content, parent_id, reply_count, deleted, delivered, created_at
		FROM messages WHERE id = $1`

	msg := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.Room, &msg.SenderID, &msg.Content, &msg.ParentID,
		&msg.ReplyCount, &msg.Deleted, &msg.Delivered, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (r *postgresMessageRepository) ListByRoom(ctx context.Context, room string, limit int) ([]models.Message, error) {
	query := `
		SELECT
			m.id, m.room, m.sender_id, m.content, m.parent_id, m.reply_count,
			m.deleted, m.delivered, m.created_at,
			u.id, u.first_name, u.last_name, u.email, u.role, u.skills, u.is_active
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.room = $1
		ORDER BY m.created_at DESC`
	args := []interface{}{room}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $2`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		var u models.User
		if scanErr := rows.Scan(
			&m.ID, &m.Room, &m.SenderID, &m.Content, &m.ParentID, &m.ReplyCount,
			&m.Deleted, &m.Delivered, &m.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, pq.Array(&u.Skills), &u.IsActive,
		); scanErr != nil {
			return nil, scanErr
		}
		m.Sender = &u
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SoftDelete replaces the content with a tombstone and flags the row;
// the message itself is never removed.
func (r *postgresMessageRepository) SoftDelete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET content = $1, deleted = TRUE WHERE id = $2`,
		models.DeletedMessageContent, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMessageNotFound)
}

func (r *postgresMessageRepository) MarkDelivered(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET delivered = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMessageNotFound)
}

func (r *postgresMessageRepository) IncrementReplyCount(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET reply_count = reply_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMessageNotFound)
}
