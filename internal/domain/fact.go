package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceWireService       SourceType = "wire_service"
	SourceOfficialStatement SourceType = "official_statement"
	SourceNewsOutlet        SourceType = "news_outlet"
	SourceSocialMedia       SourceType = "social_media"
	SourceAcademic          SourceType = "academic"
	SourceDocument          SourceType = "document"
	SourceEyewitness        SourceType = "eyewitness"
	SourceUnknown           SourceType = "unknown"
)

// DefaultCredibility returns the baseline source credibility used when no
// explicit source or domain mapping exists.
func (t SourceType) DefaultCredibility() float64 {
	switch t {
	case SourceWireService:
		return 0.90
	case SourceOfficialStatement:
		return 0.85
	case SourceAcademic:
		return 0.85
	case SourceDocument:
		return 0.80
	case SourceNewsOutlet:
		return 0.70
	case SourceEyewitness:
		return 0.60
	case SourceSocialMedia:
		return 0.40
	default:
		return 0.30
	}
}

func ValidSourceType(s string) bool {
	switch SourceType(s) {
	case SourceWireService, SourceOfficialStatement, SourceNewsOutlet,
		SourceSocialMedia, SourceAcademic, SourceDocument,
		SourceEyewitness, SourceUnknown:
		return true
	}
	return false
}

type SourceClass string

const (
	SourceClassPrimary   SourceClass = "primary"
	SourceClassSecondary SourceClass = "secondary"
	SourceClassTertiary  SourceClass = "tertiary"
)

type ClaimType string

const (
	ClaimAssertion   ClaimType = "assertion"
	ClaimAttribution ClaimType = "attribution"
	ClaimPrediction  ClaimType = "prediction"
	ClaimOpinion     ClaimType = "opinion"
)

type Claim struct {
	Text string    `json:"text"`
	Type ClaimType `json:"type,omitempty"`
}

type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORG"
	EntityLocation     EntityType = "LOCATION"
)

// Entity is one typed span extracted from the claim text.
type Entity struct {
	Text string     `json:"text"`
	Type EntityType `json:"type"`
}

type TemporalPrecision string

const (
	TemporalExplicit TemporalPrecision = "explicit"
	TemporalInferred TemporalPrecision = "inferred"
	TemporalUnknown  TemporalPrecision = "unknown"
)

type TemporalMarker struct {
	Value     string            `json:"value"`
	Precision TemporalPrecision `json:"precision"`
}

type NumericMarker struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// AttributionHop is one step in the chain from origin to the document being
// analyzed. Hop 0 is the eyewitness/primary origin.
type AttributionHop struct {
	Entity     string     `json:"entity"`
	SourceType SourceType `json:"source_type"`
	Hop        int        `json:"hop"`
}

// Provenance is the attribution record for a fact. SourceType and HopCount
// are independent dimensions; scoring consumes both separately.
type Provenance struct {
	SourceID          string           `json:"source_id"`
	Quote             string           `json:"quote,omitempty"`
	OffsetStart       int              `json:"offset_start,omitempty"`
	OffsetEnd         int              `json:"offset_end,omitempty"`
	AttributionChain  []AttributionHop `json:"attribution_chain,omitempty"`
	AttributionPhrase string           `json:"attribution_phrase,omitempty"`
	HopCount          int              `json:"hop_count"`
	SourceType        SourceType       `json:"source_type"`
	SourceClass       SourceClass      `json:"source_classification,omitempty"`
}

// RootHop returns the origin-most entry in the attribution chain, or nil if
// the chain is empty.
func (p *Provenance) RootHop() *AttributionHop {
	if len(p.AttributionChain) == 0 {
		return nil
	}
	root := &p.AttributionChain[0]
	for i := range p.AttributionChain {
		if p.AttributionChain[i].Hop < root.Hop {
			root = &p.AttributionChain[i]
		}
	}
	return root
}

// HasPrimaryOrigin reports whether the provenance can be traced to a primary
// source: a hop-0 chain entry, a primary source classification, or the
// document itself being the origin.
func (p *Provenance) HasPrimaryOrigin() bool {
	for _, hop := range p.AttributionChain {
		if hop.Hop == 0 {
			return true
		}
	}
	if p.SourceClass == SourceClassPrimary {
		return true
	}
	return p.HopCount == 0
}

// Quality holds the two orthogonal extraction quality dimensions. They are
// never collapsed into one number.
type Quality struct {
	ExtractionConfidence float64 `json:"extraction_confidence"`
	ClaimClarity         float64 `json:"claim_clarity"`
}

// Fact is an immutable extraction output. It is only ever mutated to append
// variant ids and corroborating source ids during consolidation.
type Fact struct {
	FactID            string           `json:"fact_id"`
	InvestigationID   uuid.UUID        `json:"investigation_id"`
	ContentHash       string           `json:"content_hash"`
	Claim             Claim            `json:"claim"`
	Entities          []Entity         `json:"entities,omitempty"`
	Temporal          []TemporalMarker `json:"temporal,omitempty"`
	Numeric           []NumericMarker  `json:"numeric,omitempty"`
	Provenance        *Provenance      `json:"provenance,omitempty"`
	Quality           Quality          `json:"quality"`
	Variants          []string         `json:"variants,omitempty"`
	AdditionalSources []string         `json:"additional_sources,omitempty"`
	Embedding         []float32        `json:"-"`
	CreatedAt         time.Time        `json:"created_at,omitempty"`
	UpdatedAt         time.Time        `json:"updated_at,omitempty"`
}

// HashClaim returns the content hash for a claim text: SHA-256 over the
// lowercased, whitespace-collapsed text.
func HashClaim(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// EnsureContentHash computes the content hash from the claim text if it is
// not already set.
func (f *Fact) EnsureContentHash() {
	if f.ContentHash == "" {
		f.ContentHash = HashClaim(f.Claim.Text)
	}
}
