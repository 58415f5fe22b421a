package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReplyRepository implements out.ReplyRepository
type ReplyRepository struct {
	db *sqlx.DB
}

// NewReplyRepository creates a new ReplyRepository
func NewReplyRepository(db *sqlx.DB) out.ReplyRepository {
	return &ReplyRepository{db: db}
}

const replyColumns = `id, message_id, user_id, draft_content, status, created_at, reviewed_at, sent_at`

func (r *ReplyRepository) CreateReply(ctx context.Context, reply *domain.SmartReply) error {
	query := `
		INSERT INTO smart_replies (id, message_id, user_id, draft_content, status,
		                           created_at, reviewed_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		reply.ID, reply.MessageID, reply.UserID, reply.DraftContent, reply.Status,
		reply.CreatedAt, nullTime(reply.ReviewedAt), nullTime(reply.SentAt),
	)
	if err != nil {
		return fmt.Errorf("create reply: %w", err)
	}
	return nil
}

func (r *ReplyRepository) CreateReplies(ctx context.Context, replies []*domain.SmartReply) error {
	if len(replies) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create replies: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO smart_replies (id, message_id, user_id, draft_content, status,
		                           created_at, reviewed_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, reply := range replies {
		_, err := tx.ExecContext(ctx, query,
			reply.ID, reply.MessageID, reply.UserID, reply.DraftContent, reply.Status,
			reply.CreatedAt, nullTime(reply.ReviewedAt), nullTime(reply.SentAt),
		)
		if err != nil {
			return fmt.Errorf("create replies: %w", err)
		}
	}
	return tx.Commit()
}

func (r *ReplyRepository) GetReply(ctx context.Context, id, userID uuid.UUID) (*domain.SmartReply, error) {
	query := `
		SELECT ` + replyColumns + `
		FROM smart_replies
		WHERE id = $1 AND user_id = $2`

	var row replyRow
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get reply: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ReplyRepository) ListReplies(ctx context.Context, userID uuid.UUID, status domain.ReplyStatus, limit int) ([]*domain.SmartReply, error) {
	query := `
		SELECT ` + replyColumns + `
		FROM smart_replies
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3`

	var rows []replyRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, status, limit); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return repliesToDomain(rows), nil
}

func (r *ReplyRepository) GetRepliesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.SmartReply, error) {
	query := `
		SELECT ` + replyColumns + `
		FROM smart_replies
		WHERE message_id = $1
		ORDER BY created_at ASC`

	var rows []replyRow
	if err := r.db.SelectContext(ctx, &rows, query, messageID); err != nil {
		return nil, fmt.Errorf("get replies by message: %w", err)
	}
	return repliesToDomain(rows), nil
}

func (r *ReplyRepository) UpdateReply(ctx context.Context, reply *domain.SmartReply) error {
	query := `
		UPDATE smart_replies
		SET draft_content = $1, status = $2, reviewed_at = $3, sent_at = $4
		WHERE id = $5 AND user_id = $6`

	result, err := r.db.ExecContext(ctx, query,
		reply.DraftContent, reply.Status, nullTime(reply.ReviewedAt), nullTime(reply.SentAt),
		reply.ID, reply.UserID,
	)
	if err != nil {
		return fmt.Errorf("update reply: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reply rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update reply: no matching row for %s", reply.ID)
	}
	return nil
}

func (r *ReplyRepository) DeleteRepliesByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM smart_replies WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete replies by user: %w", err)
	}
	return nil
}

type replyRow struct {
	ID           uuid.UUID    `db:"id"`
	MessageID    uuid.UUID    `db:"message_id"`
	UserID       uuid.UUID    `db:"user_id"`
	DraftContent string       `db:"draft_content"`
	Status       string       `db:"status"`
	CreatedAt    time.Time    `db:"created_at"`
	ReviewedAt   sql.NullTime `db:"reviewed_at"`
	SentAt       sql.NullTime `db:"sent_at"`
}

func (r *replyRow) toDomain() *domain.SmartReply {
	reply := &domain.SmartReply{
		ID:           r.ID,
		MessageID:    r.MessageID,
		UserID:       r.UserID,
		DraftContent: r.DraftContent,
		Status:       domain.ReplyStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time
		reply.ReviewedAt = &t
	}
	if r.SentAt.Valid {
		t := r.SentAt.Time
		reply.SentAt = &t
	}
	return reply
}

func repliesToDomain(rows []replyRow) []*domain.SmartReply {
	replies := make([]*domain.SmartReply, len(rows))
	for i := range rows {
		replies[i] = rows[i].toDomain()
	}
	return replies
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
