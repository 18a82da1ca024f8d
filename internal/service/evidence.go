package service

import (
	"github.com/osint-works/veracity/internal/domain"
)

// Evidence thresholds. A single high-authority supporter confirms on its
// own; refutation demands both authority and relevance so one off-topic
// debunk page cannot kill a fact.
const (
	ConfirmAuthorityThreshold   = 0.85
	RefuteAuthorityThreshold    = 0.70
	RefuteRelevanceThreshold    = 0.70
	IndependentDomainsToConfirm = 2
)

// Graduated confidence boosts by the strongest supporting source type.
const (
	BoostWireService = 0.30
	BoostOfficial    = 0.25
	BoostNewsOutlet  = 0.20
	BoostWeak        = 0.10
)

// Verdict is the outcome of evaluating one evidence set.
type Verdict struct {
	Status     domain.VerificationStatus
	Boost      float64
	Supporting []domain.EvidenceItem
	Refuting   []domain.EvidenceItem
}

// EvidenceAggregator turns an evidence set into a status and boost. Rules
// apply in a fixed order; the first that fires wins.
type EvidenceAggregator struct{}

func NewEvidenceAggregator() *EvidenceAggregator {
	return &EvidenceAggregator{}
}

// Evaluate applies the decision rules:
//
//  1. No evidence at all leaves the fact PENDING.
//  2. One supporting item from a high-authority source confirms.
//  3. Supporting items from independent domains confirm by corroboration.
//  4. A relevant refutation from a credible source refutes, boost zero.
//  5. Anything else stays PENDING for the next query.
func (a *EvidenceAggregator) Evaluate(evidence []domain.EvidenceItem) Verdict {
	var supporting, refuting []domain.EvidenceItem
	for _, item := range evidence {
		if item.SupportsClaim {
			supporting = append(supporting, item)
		} else {
			refuting = append(refuting, item)
		}
	}

	verdict := Verdict{Status: domain.StatusPending, Supporting: supporting, Refuting: refuting}
	if len(evidence) == 0 {
		return verdict
	}

	independent := bestPerDomain(supporting)

	for _, item := range supporting {
		if item.AuthorityScore >= ConfirmAuthorityThreshold {
			verdict.Status = domain.StatusConfirmed
			verdict.Boost = supportBoost(independent)
			return verdict
		}
	}

	if len(independent) >= IndependentDomainsToConfirm {
		verdict.Status = domain.StatusConfirmed
		verdict.Boost = supportBoost(independent)
		return verdict
	}

	for _, item := range refuting {
		if item.AuthorityScore >= RefuteAuthorityThreshold && item.RelevanceScore >= RefuteRelevanceThreshold {
			verdict.Status = domain.StatusRefuted
			return verdict
		}
	}

	return verdict
}

// supportBoost sums the graduated boosts across independent supporting
// sources, capped at 1.0.
func supportBoost(independent []domain.EvidenceItem) float64 {
	total := 0.0
	for _, item := range independent {
		total += boostFor(item.SourceType)
	}
	if total > 1.0 {
		total = 1.0
	}
	return total
}

func boostFor(t domain.SourceType) float64 {
	switch t {
	case domain.SourceWireService:
		return BoostWireService
	case domain.SourceOfficialStatement, domain.SourceAcademic:
		return BoostOfficial
	case domain.SourceNewsOutlet:
		return BoostNewsOutlet
	default:
		return BoostWeak
	}
}

// bestPerDomain deduplicates evidence by source domain, keeping the
// highest-authority item per domain. Two hits on the same outlet are one
// voice, not two.
func bestPerDomain(items []domain.EvidenceItem) []domain.EvidenceItem {
	best := make(map[string]domain.EvidenceItem)
	var order []string
	for _, item := range items {
		key := item.SourceDomain
		if key == "" {
			key = item.SourceURL
		}
		prev, ok := best[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || item.AuthorityScore > prev.AuthorityScore {
			best[key] = item
		}
	}
	out := make([]domain.EvidenceItem, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}
