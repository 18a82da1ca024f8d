package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/store"
)

// mockFactStore implements domain.FactStore for testing.
type mockFactStore struct {
	mu      sync.Mutex
	facts   map[string]*domain.Fact
	panicOn string
}

func newMockFactStore() *mockFactStore {
	return &mockFactStore{facts: make(map[string]*domain.Fact)}
}

func factKey(investigationID uuid.UUID, factID string) string {
	return investigationID.String() + "/" + factID
}

func (m *mockFactStore) Save(ctx context.Context, f *domain.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.facts[factKey(f.InvestigationID, f.FactID)] = &cp
	return nil
}

func (m *mockFactStore) GetByID(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.Fact, error) {
	if m.panicOn != "" && m.panicOn == factID {
		panic("fact store corrupted: " + factID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[factKey(investigationID, factID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFactStore) GetByContentHash(ctx context.Context, investigationID uuid.UUID, contentHash string) (*domain.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.facts {
		if f.InvestigationID == investigationID && f.ContentHash == contentHash {
			cp := *f
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockFactStore) ListByInvestigation(ctx context.Context, investigationID uuid.UUID) ([]domain.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Fact
	for _, f := range m.facts {
		if f.InvestigationID == investigationID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *mockFactStore) AppendVariant(ctx context.Context, investigationID uuid.UUID, canonicalID, variantID, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[factKey(investigationID, canonicalID)]
	if !ok {
		return store.ErrNotFound
	}
	f.Variants = append(f.Variants, variantID)
	if sourceID != "" {
		f.AdditionalSources = append(f.AdditionalSources, sourceID)
	}
	return nil
}

// mockClassificationStore implements domain.ClassificationStore for testing.
type mockClassificationStore struct {
	mu              sync.Mutex
	classifications map[string]*domain.Classification
	saveErr         error
}

func newMockClassificationStore() *mockClassificationStore {
	return &mockClassificationStore{classifications: make(map[string]*domain.Classification)}
}

func (m *mockClassificationStore) Save(ctx context.Context, c *domain.Classification) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.classifications[factKey(c.InvestigationID, c.FactID)] = &cp
	return nil
}

func (m *mockClassificationStore) GetByFactID(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classifications[factKey(investigationID, factID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClassificationStore) PriorityQueue(ctx context.Context, investigationID uuid.UUID) ([]domain.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Classification
	for _, c := range m.classifications {
		if c.InvestigationID != investigationID {
			continue
		}
		if !c.Verifiable() {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityScore > out[j].PriorityScore })
	return out, nil
}

func (m *mockClassificationStore) ListInvestigationIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, c := range m.classifications {
		if !seen[c.InvestigationID] {
			seen[c.InvestigationID] = true
			out = append(out, c.InvestigationID)
		}
	}
	return out, nil
}

// mockVerificationStore implements domain.VerificationStore for testing.
type mockVerificationStore struct {
	mu      sync.Mutex
	results map[string][]*domain.VerificationResult
}

func newMockVerificationStore() *mockVerificationStore {
	return &mockVerificationStore{results: make(map[string][]*domain.VerificationResult)}
}

func (m *mockVerificationStore) SaveResult(ctx context.Context, r *domain.VerificationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	key := factKey(r.InvestigationID, r.FactID)
	m.results[key] = append(m.results[key], &cp)
	return nil
}

func (m *mockVerificationStore) GetResult(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := m.results[factKey(investigationID, factID)]
	if len(rs) == 0 {
		return nil, store.ErrNotFound
	}
	cp := *rs[len(rs)-1]
	return &cp, nil
}

func (m *mockVerificationStore) GetAllResults(ctx context.Context, investigationID uuid.UUID) ([]domain.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.VerificationResult
	for _, rs := range m.results {
		for _, r := range rs {
			if r.InvestigationID == investigationID {
				out = append(out, *r)
			}
		}
	}
	return out, nil
}

func (m *mockVerificationStore) GetByStatus(ctx context.Context, investigationID uuid.UUID, status domain.VerificationStatus) ([]domain.VerificationResult, error) {
	all, _ := m.GetAllResults(ctx, investigationID)
	var out []domain.VerificationResult
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockVerificationStore) GetPendingReview(ctx context.Context, investigationID uuid.UUID) ([]domain.VerificationResult, error) {
	all, _ := m.GetAllResults(ctx, investigationID)
	var out []domain.VerificationResult
	for _, r := range all {
		if r.RequiresReview && !r.ReviewCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockVerificationStore) MarkReviewed(ctx context.Context, investigationID uuid.UUID, factID string, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := m.results[factKey(investigationID, factID)]
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].RequiresReview {
			rs[i].ReviewCompleted = true
			rs[i].ReviewerNotes = notes
			return nil
		}
	}
	return store.ErrNotFound
}

// mockSearcher implements domain.SearchClient with canned results.
type mockSearcher struct {
	results map[string][]domain.SearchResult
	// fallback is returned for queries with no exact entry.
	fallback []domain.SearchResult
	err      error
	calls    []string
}

func (m *mockSearcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	m.calls = append(m.calls, query)
	if m.err != nil {
		return nil, m.err
	}
	if rs, ok := m.results[query]; ok {
		return rs, nil
	}
	return m.fallback, nil
}

// mockEmbedder implements domain.EmbeddingClient with fixed vectors.
type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}
