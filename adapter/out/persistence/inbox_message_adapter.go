package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MessageRepository implements out.MessageRepository
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *sqlx.DB) out.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) GetMessage(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, user_id, platform, platform_message_id, sender, subject,
		       content, timestamp, thread_id, metadata, created_at
		FROM messages
		WHERE id = $1`

	var row messageRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}

	return row.toDomain(), nil
}

// CreateMessage stores the message idempotently per (user, platform,
// platform message id). On a duplicate the row already stored wins and
// msg.ID is rewritten to the canonical id.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, user_id, platform, platform_message_id, sender,
		                      subject, content, timestamp, thread_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, platform, platform_message_id) DO NOTHING
		RETURNING id`

	metadata, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return err
	}

	var id uuid.UUID
	err = r.db.QueryRowxContext(ctx, query,
		msg.ID, msg.UserID, msg.Platform, msg.PlatformMessageID, msg.Sender,
		nullString(msg.Subject), msg.Content, msg.Timestamp,
		nullString(msg.ThreadID), metadata, msg.CreatedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		// conflict path: RETURNING yields nothing, look up the stored row
		err = r.db.GetContext(ctx, &id,
			`SELECT id FROM messages WHERE user_id = $1 AND platform = $2 AND platform_message_id = $3`,
			msg.UserID, msg.Platform, msg.PlatformMessageID,
		)
	}
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	msg.ID = id
	return nil
}

func (r *MessageRepository) GetThread(ctx context.Context, userID uuid.UUID, threadID string) ([]*domain.Message, error) {
	query := `
		SELECT id, user_id, platform, platform_message_id, sender, subject,
		       content, timestamp, thread_id, metadata, created_at
		FROM messages
		WHERE user_id = $1 AND thread_id = $2
		ORDER BY timestamp ASC`

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, threadID); err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	messages := make([]*domain.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toDomain()
	}
	return messages, nil
}

type messageRow struct {
	ID                uuid.UUID      `db:"id"`
	UserID            uuid.UUID      `db:"user_id"`
	Platform          string         `db:"platform"`
	PlatformMessageID string         `db:"platform_message_id"`
	Sender            string         `db:"sender"`
	Subject           sql.NullString `db:"subject"`
	Content           string         `db:"content"`
	Timestamp         time.Time      `db:"timestamp"`
	ThreadID          sql.NullString `db:"thread_id"`
	Metadata          []byte         `db:"metadata"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (r *messageRow) toDomain() *domain.Message {
	msg := &domain.Message{
		ID:                r.ID,
		UserID:            r.UserID,
		Platform:          domain.Platform(r.Platform),
		PlatformMessageID: r.PlatformMessageID,
		Sender:            r.Sender,
		Subject:           r.Subject.String,
		Content:           r.Content,
		Timestamp:         r.Timestamp,
		ThreadID:          r.ThreadID.String,
		CreatedAt:         r.CreatedAt,
	}
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &msg.Metadata)
	}
	return msg
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
