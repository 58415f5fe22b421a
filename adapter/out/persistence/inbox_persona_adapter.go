package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PersonaStore implements out.PersonaStore on the user_persona table.
// Each observation is one append-only row keyed "{type}_{timestamp}";
// Snapshot aggregates recent rows per observation type.
type PersonaStore struct {
	db *sqlx.DB
}

// NewPersonaStore creates a new PersonaStore
func NewPersonaStore(db *sqlx.DB) out.PersonaStore {
	return &PersonaStore{db: db}
}

const (
	stylePatternLimit = 10
	contactLimit      = 20
)

func (s *PersonaStore) StoreObservation(ctx context.Context, userID uuid.UUID, obsType domain.ObservationType, value map[string]any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal observation: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s_%s", obsType, now.Format(time.RFC3339Nano))

	query := `
		INSERT INTO user_persona (id, user_id, memory_key, memory_value, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.ExecContext(ctx, query, uuid.New(), userID, key, data, now); err != nil {
		return fmt.Errorf("store observation: %w", err)
	}
	return nil
}

func (s *PersonaStore) Snapshot(ctx context.Context, userID uuid.UUID) (*domain.PersonaSnapshot, error) {
	styles, err := s.recentValues(ctx, userID, domain.ObservationStylePattern, stylePatternLimit)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.recentValues(ctx, userID, domain.ObservationPreference, 1)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.PersonaSnapshot{
		StylePatterns: styles,
		Contacts:      contacts,
	}
	if len(prefs) > 0 {
		snapshot.Preferences = prefs[0]
	}
	return snapshot, nil
}

func (s *PersonaStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_persona WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete persona by user: %w", err)
	}
	return nil
}

// recentValues returns the newest observation payloads of one type
func (s *PersonaStore) recentValues(ctx context.Context, userID uuid.UUID, obsType domain.ObservationType, limit int) ([]map[string]any, error) {
	query := `
		SELECT memory_value
		FROM user_persona
		WHERE user_id = $1 AND memory_key LIKE $2
		ORDER BY created_at DESC
		LIMIT $3`

	var rows [][]byte
	if err := s.db.SelectContext(ctx, &rows, query, userID, string(obsType)+"%", limit); err != nil {
		return nil, fmt.Errorf("load %s observations: %w", obsType, err)
	}

	values := make([]map[string]any, 0, len(rows))
	for _, raw := range rows {
		var value map[string]any
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		values = append(values, value)
	}
	return values, nil
}

// contacts merges contact observations by email, summing interaction
// counts, and returns them ordered by interaction count
func (s *PersonaStore) contacts(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	values, err := s.recentValues(ctx, userID, domain.ObservationContact, contactLimit)
	if err != nil {
		return nil, err
	}

	merged := map[string]*domain.Contact{}
	for _, value := range values {
		var obs struct {
			Email            string `json:"email"`
			Name             string `json:"name"`
			Relationship     string `json:"relationship"`
			InteractionCount int    `json:"interaction_count"`
		}
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(raw, &obs); err != nil || obs.Email == "" {
			continue
		}

		count := obs.InteractionCount
		if count == 0 {
			count = 1
		}
		if existing, ok := merged[obs.Email]; ok {
			existing.InteractionCount += count
			if existing.Name == "" {
				existing.Name = obs.Name
			}
			if existing.Relationship == "" {
				existing.Relationship = obs.Relationship
			}
			continue
		}
		merged[obs.Email] = &domain.Contact{
			Email:            obs.Email,
			Name:             obs.Name,
			Relationship:     obs.Relationship,
			InteractionCount: count,
		}
	}

	contacts := make([]domain.Contact, 0, len(merged))
	for _, c := range merged {
		contacts = append(contacts, *c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].InteractionCount > contacts[j].InteractionCount
	})
	return contacts, nil
}
