package service

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

// Impact assessment constants
const (
	CriticalThreshold = 0.6

	entityWeight = 0.5
	eventWeight  = 0.5

	contextKeywordBoost = 0.1
	contextEntityBoost  = 0.1
	contextBoostCap     = 0.2
)

// InvestigationContext optionally biases impact toward the investigation's
// stated focus.
type InvestigationContext struct {
	Keywords      []string `json:"keywords,omitempty"`
	FocusEntities []string `json:"focus_entities,omitempty"`
}

// ImpactResult is the outcome of geopolitical impact assessment.
type ImpactResult struct {
	Tier               domain.ImpactTier `json:"tier"`
	Score              float64           `json:"score"`
	EntityContribution float64           `json:"entity_contribution"`
	EventContribution  float64           `json:"event_contribution"`
	Reasoning          string            `json:"reasoning"`
}

var (
	worldLeaderPattern    = regexp.MustCompile(`(?i)\b(president|prime\s+minister|chancellor|head\s+of\s+state|king|queen|supreme\s+leader|premier)\b`)
	seniorOfficialPattern = regexp.MustCompile(`(?i)\b(minister|secretary\s+of\s+(state|defen[sc]e)|general|admiral|ambassador|chief\s+of\s+staff|commander|senator|governor)\b`)
	majorOrgPattern       = regexp.MustCompile(`(?i)\b(nato|united\s+nations|\bun\b|european\s+union|\beu\b|pentagon|kremlin|white\s+house|security\s+council|imf|world\s+bank|icc|iaea)\b`)

	militaryActionPattern   = regexp.MustCompile(`(?i)\b(invasion|airstrike|missile|offensive|bombing|shelling|troops?\s+(deployed|massing)|mobilization|attack|strike)\b`)
	treatySanctionPattern   = regexp.MustCompile(`(?i)\b(treaty|sanctions?|embargo|ceasefire|armistice|non-proliferation|arms\s+control|trade\s+agreement)\b`)
	majorEventPattern       = regexp.MustCompile(`(?i)\b(coup|election|crisis|revolution|uprising|assassination|annexation|referendum|martial\s+law)\b`)
	diplomaticMeetPattern   = regexp.MustCompile(`(?i)\b(summit|bilateral|negotiations?|talks|delegation|diplomatic\s+(meeting|visit)|state\s+visit)\b`)
)

// ImpactAssessor scores geopolitical impact from entity significance and
// event-type keywords. Impact is orthogonal to credibility and doubt.
type ImpactAssessor struct {
	logger *zap.Logger
}

func NewImpactAssessor(logger *zap.Logger) *ImpactAssessor {
	return &ImpactAssessor{logger: logger}
}

// Assess combines entity and event significance, applies any investigation
// context boost, and assigns the tier.
func (a *ImpactAssessor) Assess(f *domain.Fact, invCtx *InvestigationContext) ImpactResult {
	entityScore, entityReason := a.entitySignificance(f)
	eventScore, eventReason := a.eventSignificance(f)

	combined := entityWeight*entityScore + eventWeight*eventScore

	var boostReason string
	if invCtx != nil {
		boost := a.contextBoost(f, invCtx)
		if boost > 0 {
			combined += boost
			boostReason = fmt.Sprintf("; investigation context boost +%.2f", boost)
		}
	}
	if combined > 1.0 {
		combined = 1.0
	}

	tier := domain.ImpactLessCritical
	if combined >= CriticalThreshold {
		tier = domain.ImpactCritical
	}

	result := ImpactResult{
		Tier:               tier,
		Score:              combined,
		EntityContribution: entityScore,
		EventContribution:  eventScore,
		Reasoning:          entityReason + "; " + eventReason + boostReason,
	}

	a.logger.Debug("impact assessed",
		zap.String("fact_id", f.FactID),
		zap.String("tier", string(tier)),
		zap.Float64("score", combined))

	return result
}

func (a *ImpactAssessor) entitySignificance(f *domain.Fact) (float64, string) {
	text := f.Claim.Text

	if worldLeaderPattern.MatchString(text) {
		return 1.0, "world leader / head of state referenced"
	}
	if seniorOfficialPattern.MatchString(text) {
		return 0.8, "senior official or military figure referenced"
	}
	if majorOrgPattern.MatchString(text) {
		return 0.6, "major international organization referenced"
	}

	score := 0.3
	reason := "no significant entities found"
	for _, e := range f.Entities {
		switch e.Type {
		case domain.EntityPerson, domain.EntityOrganization:
			if score < 0.4 {
				score = 0.4
				reason = "generic person/organization entities"
			}
		case domain.EntityLocation:
			if score < 0.3 {
				score = 0.3
			}
			if reason == "no significant entities found" {
				reason = "location entities only"
			}
		}
	}
	return score, reason
}

func (a *ImpactAssessor) eventSignificance(f *domain.Fact) (float64, string) {
	text := f.Claim.Text

	switch {
	case militaryActionPattern.MatchString(text):
		return 1.0, "military action terms"
	case treatySanctionPattern.MatchString(text):
		return 0.9, "treaty/sanction terms"
	case majorEventPattern.MatchString(text):
		return 0.8, "major political event terms"
	case diplomaticMeetPattern.MatchString(text):
		return 0.7, "diplomatic meeting terms"
	}

	// No event keywords: fall back on the claim type.
	switch f.Claim.Type {
	case domain.ClaimAssertion:
		return 0.6, "plain assertion, no event keywords"
	case domain.ClaimAttribution:
		return 0.5, "attributed claim, no event keywords"
	case domain.ClaimPrediction:
		return 0.4, "prediction, no event keywords"
	case domain.ClaimOpinion:
		return 0.2, "opinion, no event keywords"
	default:
		return 0.3, "unclassified claim, no event keywords"
	}
}

// contextBoost adds up to contextBoostCap when the claim matches the
// investigation's keywords or focus entities.
func (a *ImpactAssessor) contextBoost(f *domain.Fact, invCtx *InvestigationContext) float64 {
	lowerClaim := strings.ToLower(f.Claim.Text)

	var boost float64
	for _, kw := range invCtx.Keywords {
		if kw != "" && strings.Contains(lowerClaim, strings.ToLower(kw)) {
			boost += contextKeywordBoost
			break
		}
	}

	for _, focus := range invCtx.FocusEntities {
		if focus == "" {
			continue
		}
		lowerFocus := strings.ToLower(focus)
		matched := strings.Contains(lowerClaim, lowerFocus)
		for _, e := range f.Entities {
			if strings.EqualFold(e.Text, focus) {
				matched = true
				break
			}
		}
		if matched {
			boost += contextEntityBoost
			break
		}
	}

	if boost > contextBoostCap {
		boost = contextBoostCap
	}
	return boost
}
