package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/store"
)

// Consolidation constants
const (
	// SemanticSimilarityThreshold merges facts whose claim embeddings are
	// at least this close in cosine similarity.
	SemanticSimilarityThreshold = 0.3
)

// SiftRequest is one consolidation batch.
type SiftRequest struct {
	Facts           []domain.Fact `json:"facts"`
	InvestigationID string        `json:"investigation_id"`
	MinConfidence   float64       `json:"min_confidence,omitempty"`
}

// SiftStats summarizes one consolidation run.
type SiftStats struct {
	TotalInput         int `json:"total_input"`
	SkippedInvalid     int `json:"skipped_invalid"`
	FilteredLowConf    int `json:"filtered_low_confidence"`
	HashDuplicates     int `json:"hash_duplicates"`
	SemanticDuplicates int `json:"semantic_duplicates"`
	// StoredDuplicates counts claims already persisted by earlier batches,
	// merged as variants on the stored canonical.
	StoredDuplicates int `json:"stored_duplicates"`
	UniqueClaims     int `json:"unique_claims"`
}

// Consolidator deduplicates facts by content hash and, when an embedding
// client is available, by claim embedding similarity. Duplicates survive as
// variants on the canonical fact; their sources are kept as corroboration.
type Consolidator struct {
	factStore domain.FactStore
	embedder  domain.EmbeddingClient
	threshold float64
	logger    *zap.Logger
}

// NewConsolidator builds a consolidator. embedder may be nil, which
// disables semantic dedup.
func NewConsolidator(factStore domain.FactStore, embedder domain.EmbeddingClient, logger *zap.Logger) *Consolidator {
	return &Consolidator{
		factStore: factStore,
		embedder:  embedder,
		threshold: SemanticSimilarityThreshold,
		logger:    logger,
	}
}

// Sift normalizes, filters, and deduplicates a batch of facts, returning
// the canonical facts and run stats. Malformed facts are skipped with a
// warning, never fatal.
func (c *Consolidator) Sift(ctx context.Context, req SiftRequest) ([]domain.Fact, SiftStats, error) {
	stats := SiftStats{TotalInput: len(req.Facts)}

	var normalized []domain.Fact
	for i := range req.Facts {
		f := req.Facts[i]
		if f.FactID == "" || f.Claim.Text == "" {
			stats.SkippedInvalid++
			c.logger.Warn("skipping malformed fact",
				zap.Int("index", i),
				zap.String("fact_id", f.FactID))
			continue
		}
		f.EnsureContentHash()

		if req.MinConfidence > 0 && f.Quality.ExtractionConfidence < req.MinConfidence {
			stats.FilteredLowConf++
			continue
		}
		normalized = append(normalized, f)
	}

	// Exact dedup: first-seen fact per hash is canonical.
	byHash := make(map[string]int)
	var canonical []domain.Fact
	for _, f := range normalized {
		if idx, seen := byHash[f.ContentHash]; seen {
			mergeVariant(&canonical[idx], &f)
			stats.HashDuplicates++
			continue
		}
		byHash[f.ContentHash] = len(canonical)
		canonical = append(canonical, f)
	}

	if c.embedder != nil && len(canonical) > 1 {
		merged, semDups, err := c.semanticDedup(ctx, canonical)
		if err != nil {
			// Embedding failures degrade to hash-only dedup.
			c.logger.Warn("semantic dedup skipped", zap.Error(err))
		} else {
			canonical = merged
			stats.SemanticDuplicates = semDups
		}
	}

	stats.UniqueClaims = len(canonical)
	c.logger.Info("sift complete",
		zap.String("investigation_id", req.InvestigationID),
		zap.Int("input", stats.TotalInput),
		zap.Int("hash_duplicates", stats.HashDuplicates),
		zap.Int("semantic_duplicates", stats.SemanticDuplicates),
		zap.Int("unique", stats.UniqueClaims))

	return canonical, stats, nil
}

// SaveFacts sifts and persists a batch, returning the run stats. A fact
// whose claim already exists from an earlier batch is not saved again; it
// is appended as a variant on the stored canonical.
func (c *Consolidator) SaveFacts(ctx context.Context, req SiftRequest) (SiftStats, error) {
	canonical, stats, err := c.Sift(ctx, req)
	if err != nil {
		return stats, err
	}
	for i := range canonical {
		f := &canonical[i]

		existing, err := c.factStore.GetByContentHash(ctx, f.InvestigationID, f.ContentHash)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return stats, fmt.Errorf("look up fact by hash: %w", err)
		}
		if existing != nil && existing.FactID != f.FactID {
			sourceID := ""
			if f.Provenance != nil {
				sourceID = f.Provenance.SourceID
			}
			if err := c.factStore.AppendVariant(ctx, f.InvestigationID, existing.FactID, f.FactID, sourceID); err != nil {
				return stats, fmt.Errorf("append variant %s: %w", f.FactID, err)
			}
			stats.StoredDuplicates++
			continue
		}

		if err := c.factStore.Save(ctx, f); err != nil {
			return stats, fmt.Errorf("save fact %s: %w", f.FactID, err)
		}
	}
	return stats, nil
}

// semanticDedup merges near-duplicate claims by pairwise cosine similarity
// over claim embeddings. This is O(n^2) over the batch and intended for
// per-document batches, not whole investigations.
func (c *Consolidator) semanticDedup(ctx context.Context, facts []domain.Fact) ([]domain.Fact, int, error) {
	embeddings := make([][]float32, len(facts))
	for i := range facts {
		emb, err := c.embedder.Embed(ctx, facts[i].Claim.Text)
		if err != nil {
			return nil, 0, fmt.Errorf("embed claim %s: %w", facts[i].FactID, err)
		}
		embeddings[i] = emb
		facts[i].Embedding = emb
	}

	mergedInto := make(map[int]bool)
	var dups int
	for i := 0; i < len(facts); i++ {
		if mergedInto[i] {
			continue
		}
		for j := i + 1; j < len(facts); j++ {
			if mergedInto[j] {
				continue
			}
			if CosineSimilarity(embeddings[i], embeddings[j]) >= c.threshold {
				mergeVariant(&facts[i], &facts[j])
				mergedInto[j] = true
				dups++
			}
		}
	}

	var out []domain.Fact
	for i := range facts {
		if !mergedInto[i] {
			out = append(out, facts[i])
		}
	}
	return out, dups, nil
}

// mergeVariant links duplicate onto canonical, preserving corroboration.
func mergeVariant(canonical *domain.Fact, duplicate *domain.Fact) {
	canonical.Variants = append(canonical.Variants, duplicate.FactID)
	if duplicate.Provenance != nil && duplicate.Provenance.SourceID != "" {
		canonical.AdditionalSources = append(canonical.AdditionalSources, duplicate.Provenance.SourceID)
	}
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
