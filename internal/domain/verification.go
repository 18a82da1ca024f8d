package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	// StatusPending means not yet attempted, or an intermediate evaluator
	// state. It is never a terminal outcome of a verification run.
	StatusPending      VerificationStatus = "PENDING"
	StatusInProgress   VerificationStatus = "IN_PROGRESS"
	StatusConfirmed    VerificationStatus = "CONFIRMED"
	StatusRefuted      VerificationStatus = "REFUTED"
	// StatusUnverifiable is the terminal state after the query budget is
	// exhausted without a confirmation or refutation.
	StatusUnverifiable VerificationStatus = "UNVERIFIABLE"
	// StatusSuperseded marks a fact that was true but is no longer current,
	// the outcome of a temporal anomaly arbitration.
	StatusSuperseded   VerificationStatus = "SUPERSEDED"
)

type ContradictionType string

const (
	ContradictionTemporal    ContradictionType = "temporal"
	ContradictionNegation    ContradictionType = "negation"
	ContradictionNumeric     ContradictionType = "numeric"
	ContradictionAttribution ContradictionType = "attribution"
)

// Contradiction links a fact to another fact it conflicts with. Detection
// happens upstream; the detector only consumes the list.
type Contradiction struct {
	RelatedFactID string            `json:"related_fact_id"`
	Type          ContradictionType `json:"type"`
	Detail        string            `json:"detail,omitempty"`
}

// EvidenceItem is one search-result-derived evidence unit.
type EvidenceItem struct {
	SourceURL      string     `json:"source_url"`
	SourceDomain   string     `json:"source_domain"`
	SourceType     SourceType `json:"source_type"`
	AuthorityScore float64    `json:"authority_score"`
	Snippet        string     `json:"snippet,omitempty"`
	SupportsClaim  bool       `json:"supports_claim"`
	RelevanceScore float64    `json:"relevance_score"`
}

// Validate rejects out-of-range scores at construction time.
func (e EvidenceItem) Validate() error {
	if e.AuthorityScore < 0 || e.AuthorityScore > 1 {
		return fmt.Errorf("authority_score %f out of [0,1]", e.AuthorityScore)
	}
	if e.RelevanceScore < 0 || e.RelevanceScore > 1 {
		return fmt.Errorf("relevance_score %f out of [0,1]", e.RelevanceScore)
	}
	return nil
}

type QueryVariant string

const (
	VariantEntityFocused        QueryVariant = "entity_focused"
	VariantExactPhrase          QueryVariant = "exact_phrase"
	VariantBroaderContext       QueryVariant = "broader_context"
	VariantClarityEnhancement   QueryVariant = "clarity_enhancement"
	VariantTemporalContext      QueryVariant = "temporal_context"
	VariantAuthorityArbitration QueryVariant = "authority_arbitration"
)

// VerificationQuery is one species-specialized search query.
type VerificationQuery struct {
	Text          string       `json:"text"`
	Variant       QueryVariant `json:"variant_type"`
	TargetSources []SourceType `json:"target_sources,omitempty"`
	Purpose       string       `json:"purpose"`
	DubiousFlag   DubiousFlag  `json:"dubious_flag"`
}

// MaxQueryAttempts is the hard cap on queries per verification attempt.
const MaxQueryAttempts = 3

// VerificationResult is the immutable record of one verification attempt.
// Once stored it is only ever touched to mark human review completion.
type VerificationResult struct {
	FactID             string             `json:"fact_id"`
	InvestigationID    uuid.UUID          `json:"investigation_id"`
	Status             VerificationStatus `json:"status"`
	OriginalConfidence float64            `json:"original_confidence"`
	ConfidenceBoost    float64            `json:"confidence_boost"`
	FinalConfidence    float64            `json:"final_confidence"`
	Supporting         []EvidenceItem     `json:"supporting_evidence,omitempty"`
	Refuting           []EvidenceItem     `json:"refuting_evidence,omitempty"`
	QueryAttempts      int                `json:"query_attempts"`
	QueriesUsed        []string           `json:"queries_used,omitempty"`
	OriginDubiousFlags []DubiousFlag      `json:"origin_dubious_flags,omitempty"`
	RequiresReview     bool               `json:"requires_human_review"`
	ReviewCompleted    bool               `json:"human_review_completed"`
	ReviewerNotes      string             `json:"human_reviewer_notes,omitempty"`
	RelatedFactID      string             `json:"related_fact_id,omitempty"`
	ContradictionType  ContradictionType  `json:"contradiction_type,omitempty"`
	StoredAt           time.Time          `json:"stored_at,omitempty"`
}

// NewVerificationResult builds a result, validating invariants and computing
// final confidence as min(1.0, original+boost). The cap is a deliberate
// saturating operation; the attempt budget is not.
func NewVerificationResult(factID string, investigationID uuid.UUID, status VerificationStatus, originalConfidence, confidenceBoost float64, queryAttempts int) (*VerificationResult, error) {
	if factID == "" {
		return nil, fmt.Errorf("fact_id is required")
	}
	if queryAttempts < 0 || queryAttempts > MaxQueryAttempts {
		return nil, fmt.Errorf("query_attempts %d out of [0,%d]", queryAttempts, MaxQueryAttempts)
	}
	if originalConfidence < 0 || originalConfidence > 1 {
		return nil, fmt.Errorf("original_confidence %f out of [0,1]", originalConfidence)
	}
	if confidenceBoost < 0 || confidenceBoost > 1 {
		return nil, fmt.Errorf("confidence_boost %f out of [0,1]", confidenceBoost)
	}

	final := originalConfidence + confidenceBoost
	if final > 1.0 {
		final = 1.0
	}

	return &VerificationResult{
		FactID:             factID,
		InvestigationID:    investigationID,
		Status:             status,
		OriginalConfidence: originalConfidence,
		ConfidenceBoost:    confidenceBoost,
		FinalConfidence:    final,
		QueryAttempts:      queryAttempts,
	}, nil
}
