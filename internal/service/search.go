package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

// DefaultResultsPerQuery bounds how many hits one query contributes.
const DefaultResultsPerQuery = 5

// SearchExecutor runs verification queries against a search backend and
// normalizes hits into scored evidence items. A nil or failing backend
// degrades to no evidence rather than an error: verification treats a dry
// search as PENDING, not a failure.
type SearchExecutor struct {
	client    domain.SearchClient
	authority *AuthorityIndex
	logger    *zap.Logger
}

func NewSearchExecutor(client domain.SearchClient, authority *AuthorityIndex, logger *zap.Logger) *SearchExecutor {
	return &SearchExecutor{client: client, authority: authority, logger: logger}
}

// Execute runs the queries in order and collects evidence, deduplicating by
// URL across queries. Per-query failures are logged and skipped.
func (e *SearchExecutor) Execute(ctx context.Context, fact *domain.Fact, queries []domain.VerificationQuery) []domain.EvidenceItem {
	if e.client == nil || len(queries) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var evidence []domain.EvidenceItem
	for _, q := range queries {
		evidence = append(evidence, e.ExecuteQuery(ctx, fact, q, seen)...)
	}
	return evidence
}

// ExecuteQuery runs a single query, skipping URLs already in seen. Failures
// degrade to no evidence; a dry search is inconclusive, not an error.
func (e *SearchExecutor) ExecuteQuery(ctx context.Context, fact *domain.Fact, q domain.VerificationQuery, seen map[string]bool) []domain.EvidenceItem {
	if e.client == nil {
		return nil
	}
	results, err := e.client.Search(ctx, q.Text, DefaultResultsPerQuery)
	if err != nil {
		e.logger.Warn("search query failed",
			zap.String("query", q.Text),
			zap.String("variant", string(q.Variant)),
			zap.Error(err))
		return nil
	}
	var evidence []domain.EvidenceItem
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		evidence = append(evidence, e.toEvidence(fact, r))
	}
	return evidence
}

// toEvidence scores a search hit by its domain authority and estimates
// stance and relevance from the snippet.
func (e *SearchExecutor) toEvidence(fact *domain.Fact, r domain.SearchResult) domain.EvidenceItem {
	host := extractHost(r.URL)
	if host == "" {
		host = r.URL
	}
	score, sourceType := e.authority.ScoreDomain(host)

	return domain.EvidenceItem{
		SourceURL:      r.URL,
		SourceDomain:   host,
		SourceType:     sourceType,
		AuthorityScore: score,
		Snippet:        r.Snippet,
		SupportsClaim:  snippetSupports(fact, r.Snippet),
		RelevanceScore: snippetRelevance(fact, r.Snippet),
	}
}

var refutingMarkers = []string{
	"false", "denied", "denies", "debunked", "refuted", "incorrect",
	"no evidence", "did not", "untrue", "misleading",
}

// snippetSupports is a coarse stance heuristic: explicit refutation
// language flips the hit to refuting, everything else counts as support.
func snippetSupports(fact *domain.Fact, snippet string) bool {
	lower := strings.ToLower(snippet)
	for _, m := range refutingMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

// snippetRelevance scores entity overlap between the claim and the snippet.
func snippetRelevance(fact *domain.Fact, snippet string) float64 {
	if len(fact.Entities) == 0 {
		return 0.5
	}
	lower := strings.ToLower(snippet)
	matched := 0
	for _, ent := range fact.Entities {
		if ent.Text != "" && strings.Contains(lower, strings.ToLower(ent.Text)) {
			matched++
		}
	}
	relevance := 0.3 + 0.7*float64(matched)/float64(len(fact.Entities))
	if relevance > 1.0 {
		relevance = 1.0
	}
	return relevance
}
