package domain

import (
	"time"

	"github.com/google/uuid"
)

type ImpactTier string

const (
	ImpactCritical     ImpactTier = "CRITICAL"
	ImpactLessCritical ImpactTier = "LESS_CRITICAL"
)

// DubiousFlag is one species of doubt. Flags are independent Boolean gates;
// a classification carries zero, one, or many.
type DubiousFlag string

const (
	// FlagPhantom marks a structural failure: no traceable primary origin.
	FlagPhantom DubiousFlag = "PHANTOM"
	// FlagFog marks an attribution failure: vague or hedged sourcing.
	FlagFog DubiousFlag = "FOG"
	// FlagAnomaly marks a coherence failure: the fact contradicts another.
	FlagAnomaly DubiousFlag = "ANOMALY"
	// FlagNoise marks a reputation failure: a known-unreliable source.
	FlagNoise DubiousFlag = "NOISE"
)

// CredibilityBreakdown records the inputs behind a credibility score so the
// number stays explainable after the fact.
type CredibilityBreakdown struct {
	RootScore   float64   `json:"s_root"`
	EchoSum     float64   `json:"s_echoes_sum"`
	Proximities []float64 `json:"proximities,omitempty"`
	Precisions  []float64 `json:"precisions,omitempty"`
	EchoBonus   float64   `json:"echo_bonus"`
	Alpha       float64   `json:"alpha"`
}

// FlagReasoning is one entry per triggered dubious flag, carrying the raw
// trigger values for debugging.
type FlagReasoning struct {
	Flag     DubiousFlag    `json:"flag"`
	Reason   string         `json:"reason"`
	Triggers map[string]any `json:"triggers,omitempty"`
}

// HistoryEntry captures the pre-mutation state of a classification. Every
// mutation to tier, flags, or credibility must append one first.
type HistoryEntry struct {
	Timestamp           time.Time     `json:"timestamp"`
	PreviousImpactTier  ImpactTier    `json:"previous_impact_tier"`
	PreviousFlags       []DubiousFlag `json:"previous_dubious_flags"`
	PreviousCredibility float64       `json:"previous_credibility_score"`
	Trigger             string        `json:"trigger"`
}

// Classification is the mutable classification record for one fact within
// one investigation. Stored separately from the fact itself.
type Classification struct {
	FactID           string               `json:"fact_id"`
	InvestigationID  uuid.UUID            `json:"investigation_id"`
	ImpactTier       ImpactTier           `json:"impact_tier"`
	ImpactScore      float64              `json:"impact_score"`
	ImpactReasoning  string               `json:"impact_reasoning,omitempty"`
	DubiousFlags     []DubiousFlag        `json:"dubious_flags"`
	PriorityScore    float64              `json:"priority_score"`
	CredibilityScore float64              `json:"credibility_score"`
	Breakdown        CredibilityBreakdown `json:"credibility_breakdown"`
	Reasoning        []FlagReasoning      `json:"classification_reasoning,omitempty"`
	FixabilityScore  float64              `json:"fixability_score"`
	History          []HistoryEntry       `json:"history,omitempty"`
	CreatedAt        time.Time            `json:"created_at,omitempty"`
	UpdatedAt        time.Time            `json:"updated_at,omitempty"`
}

// Snapshot appends a history entry capturing the current state. Call before
// mutating tier, flags, or credibility.
func (c *Classification) Snapshot(trigger string) {
	flags := make([]DubiousFlag, len(c.DubiousFlags))
	copy(flags, c.DubiousFlags)
	c.History = append(c.History, HistoryEntry{
		Timestamp:           time.Now().UTC(),
		PreviousImpactTier:  c.ImpactTier,
		PreviousFlags:       flags,
		PreviousCredibility: c.CredibilityScore,
		Trigger:             trigger,
	})
}

// HasFlag reports whether the given dubious flag is set.
func (c *Classification) HasFlag(f DubiousFlag) bool {
	for _, flag := range c.DubiousFlags {
		if flag == f {
			return true
		}
	}
	return false
}

// PureNoise reports whether NOISE is the only flag set. Pure-noise facts are
// batch-only and never individually queued for verification.
func (c *Classification) PureNoise() bool {
	return len(c.DubiousFlags) == 1 && c.DubiousFlags[0] == FlagNoise
}

// Verifiable reports whether the classification qualifies for the
// verification queue: at least one flag, and not pure noise.
func (c *Classification) Verifiable() bool {
	return len(c.DubiousFlags) > 0 && !c.PureNoise()
}
