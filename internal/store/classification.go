package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osint-works/veracity/internal/domain"
)

type ClassificationStore struct {
	db *pgxpool.Pool
}

func NewClassificationStore(db *pgxpool.Pool) *ClassificationStore {
	return &ClassificationStore{db: db}
}

func (s *ClassificationStore) Save(ctx context.Context, c *domain.Classification) error {
	breakdown, err := json.Marshal(c.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	reasoning, err := json.Marshal(c.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}
	history, err := json.Marshal(c.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	flags := make([]string, len(c.DubiousFlags))
	for i, f := range c.DubiousFlags {
		flags[i] = string(f)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO classifications (fact_id, investigation_id, impact_tier, impact_score, impact_reasoning, dubious_flags, priority_score, credibility_score, breakdown, reasoning, fixability_score, history)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (investigation_id, fact_id) DO UPDATE
		 SET impact_tier = EXCLUDED.impact_tier,
		     impact_score = EXCLUDED.impact_score,
		     impact_reasoning = EXCLUDED.impact_reasoning,
		     dubious_flags = EXCLUDED.dubious_flags,
		     priority_score = EXCLUDED.priority_score,
		     credibility_score = EXCLUDED.credibility_score,
		     breakdown = EXCLUDED.breakdown,
		     reasoning = EXCLUDED.reasoning,
		     fixability_score = EXCLUDED.fixability_score,
		     history = EXCLUDED.history,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		c.FactID, c.InvestigationID, c.ImpactTier, c.ImpactScore, c.ImpactReasoning, flags, c.PriorityScore, c.CredibilityScore, breakdown, reasoning, c.FixabilityScore, history,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *ClassificationStore) GetByFactID(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.Classification, error) {
	row := s.db.QueryRow(ctx,
		`SELECT fact_id, investigation_id, impact_tier, impact_score, impact_reasoning, dubious_flags, priority_score, credibility_score, breakdown, reasoning, fixability_score, history, created_at, updated_at
		 FROM classifications WHERE investigation_id = $1 AND fact_id = $2`,
		investigationID, factID,
	)
	c, err := scanClassification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// PriorityQueue returns verifiable classifications ordered by priority score
// descending. Pure-NOISE facts are excluded here, not by callers.
func (s *ClassificationStore) PriorityQueue(ctx context.Context, investigationID uuid.UUID) ([]domain.Classification, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fact_id, investigation_id, impact_tier, impact_score, impact_reasoning, dubious_flags, priority_score, credibility_score, breakdown, reasoning, fixability_score, history, created_at, updated_at
		 FROM classifications
		 WHERE investigation_id = $1
		   AND cardinality(dubious_flags) > 0
		   AND dubious_flags <> ARRAY['NOISE']
		 ORDER BY priority_score DESC`,
		investigationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Classification
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *c)
	}
	return results, rows.Err()
}

func (s *ClassificationStore) ListInvestigationIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT investigation_id FROM classifications`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanClassification(row rowScanner) (*domain.Classification, error) {
	c := &domain.Classification{}
	var flags []string
	var breakdown, reasoning, history []byte
	if err := row.Scan(&c.FactID, &c.InvestigationID, &c.ImpactTier, &c.ImpactScore, &c.ImpactReasoning, &flags, &c.PriorityScore, &c.CredibilityScore, &breakdown, &reasoning, &c.FixabilityScore, &history, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.DubiousFlags = make([]domain.DubiousFlag, len(flags))
	for i, f := range flags {
		c.DubiousFlags[i] = domain.DubiousFlag(f)
	}

	if err := json.Unmarshal(breakdown, &c.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	if len(reasoning) > 0 {
		if err := json.Unmarshal(reasoning, &c.Reasoning); err != nil {
			return nil, fmt.Errorf("unmarshal reasoning: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return c, nil
}
