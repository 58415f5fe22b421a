// Package vector stores message embeddings in Postgres with pgvector
// and serves cosine-similarity search over them.
package vector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements out.VectorStore on the message_embeddings table
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, rec *out.EmbeddingRecord) error {
	query := `
		INSERT INTO message_embeddings (message_id, user_id, platform, timestamp,
		                                subject, content_preview, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (message_id) DO UPDATE
		SET subject = EXCLUDED.subject,
		    content_preview = EXCLUDED.content_preview,
		    embedding = EXCLUDED.embedding`

	_, err := s.db.Exec(ctx, query,
		rec.MessageID, rec.UserID, string(rec.Platform), rec.Timestamp,
		rec.Subject, rec.ContentPreview, pgVector(rec.Embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, messageID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM message_embeddings WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	return nil
}

func (s *Store) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM message_embeddings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete embeddings by user: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, minScore float64) ([]*out.VectorSearchResult, error) {
	query := `
		SELECT message_id, 1 - (embedding <=> $1) as score, platform,
		       timestamp, subject, content_preview
		FROM message_embeddings
		WHERE user_id = $2`

	if minScore > 0 {
		query += ` AND 1 - (embedding <=> $1) >= ` + strconv.FormatFloat(minScore, 'f', 2, 64)
	}
	query += ` ORDER BY embedding <=> $1 LIMIT $3`

	rows, err := s.db.Query(ctx, query, pgVector(embedding), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}
	defer rows.Close()

	var results []*out.VectorSearchResult
	for rows.Next() {
		var r out.VectorSearchResult
		var platform string
		if err := rows.Scan(&r.MessageID, &r.Score, &platform, &r.Timestamp, &r.Subject, &r.ContentPreview); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		r.Platform = domain.Platform(platform)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}

// pgVector renders an embedding in pgvector input syntax
func pgVector(v []float32) string {
	if len(v) == 0 {
		return "[0]"
	}

	buf := make([]byte, 0, len(v)*13+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(f), 'f', 6, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}
