package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/osint-works/veracity/internal/domain"
)

type FactStore struct {
	db *pgxpool.Pool
}

func NewFactStore(db *pgxpool.Pool) *FactStore {
	return &FactStore{db: db}
}

// factFields groups the JSONB-encoded portions of a fact row.
type factFields struct {
	Claim    domain.Claim            `json:"claim"`
	Entities []domain.Entity         `json:"entities,omitempty"`
	Temporal []domain.TemporalMarker `json:"temporal,omitempty"`
	Numeric  []domain.NumericMarker  `json:"numeric,omitempty"`
}

func (s *FactStore) Save(ctx context.Context, f *domain.Fact) error {
	f.EnsureContentHash()

	var embedding *pgvector.Vector
	if len(f.Embedding) > 0 {
		v := pgvector.NewVector(f.Embedding)
		embedding = &v
	}

	fields, err := json.Marshal(factFields{
		Claim:    f.Claim,
		Entities: f.Entities,
		Temporal: f.Temporal,
		Numeric:  f.Numeric,
	})
	if err != nil {
		return fmt.Errorf("marshal fact fields: %w", err)
	}

	var provenance []byte
	if f.Provenance != nil {
		provenance, err = json.Marshal(f.Provenance)
		if err != nil {
			return fmt.Errorf("marshal provenance: %w", err)
		}
	}

	quality, err := json.Marshal(f.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO facts (fact_id, investigation_id, content_hash, fields, provenance, quality, variants, additional_sources, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (investigation_id, fact_id) DO UPDATE
		 SET variants = EXCLUDED.variants,
		     additional_sources = EXCLUDED.additional_sources,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		f.FactID, f.InvestigationID, f.ContentHash, fields, provenance, quality, f.Variants, f.AdditionalSources, embedding,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (s *FactStore) GetByID(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.Fact, error) {
	row := s.db.QueryRow(ctx,
		`SELECT fact_id, investigation_id, content_hash, fields, provenance, quality, variants, additional_sources, created_at, updated_at
		 FROM facts WHERE investigation_id = $1 AND fact_id = $2`,
		investigationID, factID,
	)
	f, err := scanFact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FactStore) GetByContentHash(ctx context.Context, investigationID uuid.UUID, contentHash string) (*domain.Fact, error) {
	row := s.db.QueryRow(ctx,
		`SELECT fact_id, investigation_id, content_hash, fields, provenance, quality, variants, additional_sources, created_at, updated_at
		 FROM facts WHERE investigation_id = $1 AND content_hash = $2
		 ORDER BY created_at LIMIT 1`,
		investigationID, contentHash,
	)
	f, err := scanFact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FactStore) ListByInvestigation(ctx context.Context, investigationID uuid.UUID) ([]domain.Fact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fact_id, investigation_id, content_hash, fields, provenance, quality, variants, additional_sources, created_at, updated_at
		 FROM facts WHERE investigation_id = $1 ORDER BY created_at`,
		investigationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *f)
	}
	return facts, rows.Err()
}

func (s *FactStore) AppendVariant(ctx context.Context, investigationID uuid.UUID, canonicalID, variantID, sourceID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE facts
		 SET variants = array_append(variants, $3),
		     additional_sources = CASE WHEN $4 = '' THEN additional_sources ELSE array_append(additional_sources, $4) END,
		     updated_at = NOW()
		 WHERE investigation_id = $1 AND fact_id = $2`,
		investigationID, canonicalID, variantID, sourceID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFact(row rowScanner) (*domain.Fact, error) {
	f := &domain.Fact{}
	var fields, provenance, quality []byte
	if err := row.Scan(&f.FactID, &f.InvestigationID, &f.ContentHash, &fields, &provenance, &quality, &f.Variants, &f.AdditionalSources, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}

	var ff factFields
	if err := json.Unmarshal(fields, &ff); err != nil {
		return nil, fmt.Errorf("unmarshal fact fields: %w", err)
	}
	f.Claim = ff.Claim
	f.Entities = ff.Entities
	f.Temporal = ff.Temporal
	f.Numeric = ff.Numeric

	if len(provenance) > 0 {
		f.Provenance = &domain.Provenance{}
		if err := json.Unmarshal(provenance, f.Provenance); err != nil {
			return nil, fmt.Errorf("unmarshal provenance: %w", err)
		}
	}
	if len(quality) > 0 {
		if err := json.Unmarshal(quality, &f.Quality); err != nil {
			return nil, fmt.Errorf("unmarshal quality: %w", err)
		}
	}
	return f, nil
}
