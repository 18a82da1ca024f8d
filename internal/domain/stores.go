package domain

import (
	"context"

	"github.com/google/uuid"
)

type FactStore interface {
	Save(ctx context.Context, f *Fact) error
	GetByID(ctx context.Context, investigationID uuid.UUID, factID string) (*Fact, error)
	// GetByContentHash returns the stored fact whose normalized claim
	// hashes to contentHash, for dedup against earlier batches.
	GetByContentHash(ctx context.Context, investigationID uuid.UUID, contentHash string) (*Fact, error)
	ListByInvestigation(ctx context.Context, investigationID uuid.UUID) ([]Fact, error)
	// AppendVariant links a duplicate fact onto its canonical fact and
	// records the duplicate's source as corroboration.
	AppendVariant(ctx context.Context, investigationID uuid.UUID, canonicalID, variantID, sourceID string) error
}

type ClassificationStore interface {
	Save(ctx context.Context, c *Classification) error
	GetByFactID(ctx context.Context, investigationID uuid.UUID, factID string) (*Classification, error)
	// PriorityQueue returns verifiable classifications sorted by
	// priority_score descending, pure-NOISE facts excluded.
	PriorityQueue(ctx context.Context, investigationID uuid.UUID) ([]Classification, error)
	ListInvestigationIDs(ctx context.Context) ([]uuid.UUID, error)
}

type VerificationStore interface {
	SaveResult(ctx context.Context, r *VerificationResult) error
	GetResult(ctx context.Context, investigationID uuid.UUID, factID string) (*VerificationResult, error)
	GetAllResults(ctx context.Context, investigationID uuid.UUID) ([]VerificationResult, error)
	GetByStatus(ctx context.Context, investigationID uuid.UUID, status VerificationStatus) ([]VerificationResult, error)
	GetPendingReview(ctx context.Context, investigationID uuid.UUID) ([]VerificationResult, error)
	MarkReviewed(ctx context.Context, investigationID uuid.UUID, factID string, notes string) error
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is one raw hit from the search provider.
type SearchResult struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchClient wraps a web search provider. Implementations degrade to
// empty results when no credential is configured; they never surface the
// absence of a key as an error.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
