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

type VerificationStore struct {
	db *pgxpool.Pool
}

func NewVerificationStore(db *pgxpool.Pool) *VerificationStore {
	return &VerificationStore{db: db}
}

// SaveResult appends a verification result. Results are append-style: a new
// attempt on the same fact inserts a new row; the latest row wins reads.
func (s *VerificationStore) SaveResult(ctx context.Context, r *domain.VerificationResult) error {
	supporting, err := json.Marshal(r.Supporting)
	if err != nil {
		return fmt.Errorf("marshal supporting evidence: %w", err)
	}
	refuting, err := json.Marshal(r.Refuting)
	if err != nil {
		return fmt.Errorf("marshal refuting evidence: %w", err)
	}

	flags := make([]string, len(r.OriginDubiousFlags))
	for i, f := range r.OriginDubiousFlags {
		flags[i] = string(f)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO verification_results (fact_id, investigation_id, status, original_confidence, confidence_boost, final_confidence, supporting_evidence, refuting_evidence, query_attempts, queries_used, origin_dubious_flags, requires_human_review, human_review_completed, human_reviewer_notes, related_fact_id, contradiction_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING stored_at`,
		r.FactID, r.InvestigationID, r.Status, r.OriginalConfidence, r.ConfidenceBoost, r.FinalConfidence,
		supporting, refuting, r.QueryAttempts, r.QueriesUsed, flags,
		r.RequiresReview, r.ReviewCompleted, r.ReviewerNotes, r.RelatedFactID, string(r.ContradictionType),
	).Scan(&r.StoredAt)
}

func (s *VerificationStore) GetResult(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.VerificationResult, error) {
	row := s.db.QueryRow(ctx,
		verificationSelect+` WHERE investigation_id = $1 AND fact_id = $2
		 ORDER BY stored_at DESC LIMIT 1`,
		investigationID, factID,
	)
	r, err := scanVerificationResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *VerificationStore) GetAllResults(ctx context.Context, investigationID uuid.UUID) ([]domain.VerificationResult, error) {
	return s.queryResults(ctx,
		verificationSelect+` WHERE investigation_id = $1 ORDER BY stored_at DESC`,
		investigationID)
}

func (s *VerificationStore) GetByStatus(ctx context.Context, investigationID uuid.UUID, status domain.VerificationStatus) ([]domain.VerificationResult, error) {
	return s.queryResults(ctx,
		verificationSelect+` WHERE investigation_id = $1 AND status = $2 ORDER BY stored_at DESC`,
		investigationID, status)
}

func (s *VerificationStore) GetPendingReview(ctx context.Context, investigationID uuid.UUID) ([]domain.VerificationResult, error) {
	return s.queryResults(ctx,
		verificationSelect+` WHERE investigation_id = $1 AND requires_human_review AND NOT human_review_completed ORDER BY stored_at`,
		investigationID)
}

func (s *VerificationStore) MarkReviewed(ctx context.Context, investigationID uuid.UUID, factID string, notes string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE verification_results
		 SET human_review_completed = TRUE, human_reviewer_notes = $3
		 WHERE investigation_id = $1 AND fact_id = $2 AND requires_human_review`,
		investigationID, factID, notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const verificationSelect = `SELECT fact_id, investigation_id, status, original_confidence, confidence_boost, final_confidence, supporting_evidence, refuting_evidence, query_attempts, queries_used, origin_dubious_flags, requires_human_review, human_review_completed, human_reviewer_notes, related_fact_id, contradiction_type, stored_at
 FROM verification_results`

func (s *VerificationStore) queryResults(ctx context.Context, query string, args ...any) ([]domain.VerificationResult, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.VerificationResult
	for rows.Next() {
		r, err := scanVerificationResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

func scanVerificationResult(row rowScanner) (*domain.VerificationResult, error) {
	r := &domain.VerificationResult{}
	var supporting, refuting []byte
	var flags []string
	var contradictionType string
	if err := row.Scan(&r.FactID, &r.InvestigationID, &r.Status, &r.OriginalConfidence, &r.ConfidenceBoost, &r.FinalConfidence, &supporting, &refuting, &r.QueryAttempts, &r.QueriesUsed, &flags, &r.RequiresReview, &r.ReviewCompleted, &r.ReviewerNotes, &r.RelatedFactID, &contradictionType, &r.StoredAt); err != nil {
		return nil, err
	}

	r.ContradictionType = domain.ContradictionType(contradictionType)
	r.OriginDubiousFlags = make([]domain.DubiousFlag, len(flags))
	for i, f := range flags {
		r.OriginDubiousFlags[i] = domain.DubiousFlag(f)
	}

	if len(supporting) > 0 {
		if err := json.Unmarshal(supporting, &r.Supporting); err != nil {
			return nil, fmt.Errorf("unmarshal supporting evidence: %w", err)
		}
	}
	if len(refuting) > 0 {
		if err := json.Unmarshal(refuting, &r.Refuting); err != nil {
			return nil, fmt.Errorf("unmarshal refuting evidence: %w", err)
		}
	}
	return r, nil
}
