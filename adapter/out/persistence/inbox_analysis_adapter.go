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

// AnalysisRepository implements out.AnalysisRepository
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new AnalysisRepository
func NewAnalysisRepository(db *sqlx.DB) out.AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) GetAnalysis(ctx context.Context, messageID uuid.UUID) (*domain.Analysis, error) {
	query := `
		SELECT message_id, summary, intent, priority_score, tasks, deadlines,
		       is_spam, spam_score, spam_type, unsubscribe_link, source, analyzed_at
		FROM message_analyses
		WHERE message_id = $1`

	var row analysisRow
	if err := r.db.GetContext(ctx, &row, query, messageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	return row.toDomain()
}

// ReplaceAnalysis swaps the stored analysis and actionable items for a
// message in one transaction, so a rerun never leaves stale rows.
func (r *AnalysisRepository) ReplaceAnalysis(ctx context.Context, analysis *domain.Analysis, items []*domain.Actionable) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace analysis: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM actionable_items WHERE message_id = $1`, analysis.MessageID); err != nil {
		return fmt.Errorf("clear actionable items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM message_analyses WHERE message_id = $1`, analysis.MessageID); err != nil {
		return fmt.Errorf("clear analysis: %w", err)
	}

	tasks, err := json.Marshal(analysis.Tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	deadlines, err := json.Marshal(analysis.Deadlines)
	if err != nil {
		return fmt.Errorf("marshal deadlines: %w", err)
	}

	insertAnalysis := `
		INSERT INTO message_analyses (message_id, summary, intent, priority_score,
		                              tasks, deadlines, is_spam, spam_score, spam_type,
		                              unsubscribe_link, source, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.ExecContext(ctx, insertAnalysis,
		analysis.MessageID, analysis.Summary, analysis.Intent, analysis.PriorityScore,
		tasks, deadlines, analysis.IsSpam, analysis.SpamScore, analysis.SpamType,
		nullString(analysis.UnsubscribeLink), analysis.Source, analysis.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	insertItem := `
		INSERT INTO actionable_items (id, message_id, user_id, type, description,
		                              deadline, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range items {
		var deadline sql.NullTime
		if item.Deadline != nil {
			deadline = sql.NullTime{Time: *item.Deadline, Valid: true}
		}
		_, err := tx.ExecContext(ctx, insertItem,
			item.ID, item.MessageID, item.UserID, item.Type, item.Description,
			deadline, item.Completed, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert actionable item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *AnalysisRepository) DeleteAnalysis(ctx context.Context, messageID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete analysis: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM actionable_items WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("delete actionable items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM message_analyses WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return tx.Commit()
}

func (r *AnalysisRepository) DeleteAnalysesByUser(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete analyses by user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM actionable_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete actionable items by user: %w", err)
	}
	deleteAnalyses := `
		DELETE FROM message_analyses
		WHERE message_id IN (SELECT id FROM messages WHERE user_id = $1)`
	if _, err := tx.ExecContext(ctx, deleteAnalyses, userID); err != nil {
		return fmt.Errorf("delete analyses by user: %w", err)
	}
	return tx.Commit()
}

func (r *AnalysisRepository) GetActionablesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.Actionable, error) {
	query := `
		SELECT id, message_id, user_id, type, description, deadline, completed, created_at
		FROM actionable_items
		WHERE message_id = $1
		ORDER BY created_at ASC`

	var rows []actionableRow
	if err := r.db.SelectContext(ctx, &rows, query, messageID); err != nil {
		return nil, fmt.Errorf("get actionables by message: %w", err)
	}
	return actionablesToDomain(rows), nil
}

const actionableOrderClause = ` ORDER BY deadline ASC NULLS LAST, created_at DESC`

// listActionablesQuery builds the listing query, soonest deadline
// first with undated items last.
func listActionablesQuery(filterCompleted bool) string {
	query := `
		SELECT id, message_id, user_id, type, description, deadline, completed, created_at
		FROM actionable_items
		WHERE user_id = $1`
	if filterCompleted {
		return query + ` AND completed = $2` + actionableOrderClause + ` LIMIT $3`
	}
	return query + actionableOrderClause + ` LIMIT $2`
}

func (r *AnalysisRepository) ListActionables(ctx context.Context, userID uuid.UUID, completed *bool, limit int) ([]*domain.Actionable, error) {
	query := listActionablesQuery(completed != nil)
	args := []interface{}{userID}
	if completed != nil {
		args = append(args, *completed)
	}
	args = append(args, limit)

	var rows []actionableRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list actionables: %w", err)
	}
	return actionablesToDomain(rows), nil
}

func (r *AnalysisRepository) CompleteActionable(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE actionable_items
		SET completed = TRUE
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("complete actionable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete actionable rows affected: %w", err)
	}
	return affected > 0, nil
}

type analysisRow struct {
	MessageID       uuid.UUID       `db:"message_id"`
	Summary         string          `db:"summary"`
	Intent          string          `db:"intent"`
	PriorityScore   float64         `db:"priority_score"`
	Tasks           json.RawMessage `db:"tasks"`
	Deadlines       json.RawMessage `db:"deadlines"`
	IsSpam          bool            `db:"is_spam"`
	SpamScore       float64         `db:"spam_score"`
	SpamType        string          `db:"spam_type"`
	UnsubscribeLink sql.NullString  `db:"unsubscribe_link"`
	Source          string          `db:"source"`
	AnalyzedAt      time.Time       `db:"analyzed_at"`
}

func (r *analysisRow) toDomain() (*domain.Analysis, error) {
	analysis := &domain.Analysis{
		MessageID:       r.MessageID,
		Summary:         r.Summary,
		Intent:          domain.Intent(r.Intent),
		PriorityScore:   r.PriorityScore,
		IsSpam:          r.IsSpam,
		SpamScore:       r.SpamScore,
		SpamType:        domain.SpamType(r.SpamType),
		UnsubscribeLink: r.UnsubscribeLink.String,
		Source:          domain.AnalysisSource(r.Source),
		AnalyzedAt:      r.AnalyzedAt,
	}
	if len(r.Tasks) > 0 {
		if err := json.Unmarshal(r.Tasks, &analysis.Tasks); err != nil {
			return nil, fmt.Errorf("unmarshal tasks: %w", err)
		}
	}
	if len(r.Deadlines) > 0 {
		if err := json.Unmarshal(r.Deadlines, &analysis.Deadlines); err != nil {
			return nil, fmt.Errorf("unmarshal deadlines: %w", err)
		}
	}
	return analysis, nil
}

type actionableRow struct {
	ID          uuid.UUID    `db:"id"`
	MessageID   uuid.UUID    `db:"message_id"`
	UserID      uuid.UUID    `db:"user_id"`
	Type        string       `db:"type"`
	Description string       `db:"description"`
	Deadline    sql.NullTime `db:"deadline"`
	Completed   bool         `db:"completed"`
	CreatedAt   time.Time    `db:"created_at"`
}

func actionablesToDomain(rows []actionableRow) []*domain.Actionable {
	items := make([]*domain.Actionable, len(rows))
	for i, row := range rows {
		item := &domain.Actionable{
			ID:          row.ID,
			MessageID:   row.MessageID,
			UserID:      row.UserID,
			Type:        domain.TaskCategory(row.Type),
			Description: row.Description,
			Completed:   row.Completed,
			CreatedAt:   row.CreatedAt,
		}
		if row.Deadline.Valid {
			deadline := row.Deadline.Time
			item.Deadline = &deadline
		}
		items[i] = item
	}
	return items
}
