package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/store"
)

// DefaultBatchSize bounds both the batch length and in-batch concurrency.
const DefaultBatchSize = 10

// VerificationStats summarizes one investigation run. Partial failure is
// normal: failed facts are counted, logged, and excluded from the outcome
// counters.
type VerificationStats struct {
	InvestigationID uuid.UUID `json:"investigation_id"`
	TotalQueued     int       `json:"total_queued"`
	TotalVerified   int       `json:"total_verified"`
	Confirmed       int       `json:"confirmed"`
	Refuted         int       `json:"refuted"`
	Unverifiable    int       `json:"unverifiable"`
	PendingReview   int       `json:"pending_review"`
	Failed          int       `json:"failed"`
}

// VerificationAgent drives the per-fact verification loop and batches it
// across an investigation's priority queue.
type VerificationAgent struct {
	facts           domain.FactStore
	classifications domain.ClassificationStore
	verifications   domain.VerificationStore
	queries         *QueryGenerator
	search          *SearchExecutor
	aggregator      *EvidenceAggregator
	reclassifier    *Reclassifier
	batchSize       int
	logger          *zap.Logger
}

func NewVerificationAgent(
	facts domain.FactStore,
	classifications domain.ClassificationStore,
	verifications domain.VerificationStore,
	queries *QueryGenerator,
	search *SearchExecutor,
	aggregator *EvidenceAggregator,
	reclassifier *Reclassifier,
	batchSize int,
	logger *zap.Logger,
) *VerificationAgent {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &VerificationAgent{
		facts:           facts,
		classifications: classifications,
		verifications:   verifications,
		queries:         queries,
		search:          search,
		aggregator:      aggregator,
		reclassifier:    reclassifier,
		batchSize:       batchSize,
		logger:          logger,
	}
}

// VerifyFact runs the full loop for one fact: generate queries, execute
// them strictly in order, aggregate after each, and short-circuit on a
// conclusive verdict. Exhausting the query budget without a verdict is
// terminal UNVERIFIABLE, never PENDING.
//
// Returns (nil, nil) when the fact has no verifiable classification.
func (a *VerificationAgent) VerifyFact(ctx context.Context, investigationID uuid.UUID, factID string) (*domain.VerificationResult, error) {
	c, err := a.classifications.GetByFactID(ctx, investigationID, factID)
	if errors.Is(err, store.ErrNotFound) {
		a.logger.Warn("fact has no classification, skipping verification",
			zap.String("fact_id", factID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !c.Verifiable() {
		return nil, nil
	}

	f, err := a.facts.GetByID(ctx, investigationID, factID)
	if err != nil {
		return nil, err
	}

	queries := a.queries.GenerateQueries(f, c)

	var (
		evidence []domain.EvidenceItem
		verdict  = Verdict{Status: domain.StatusPending}
		seen     = make(map[string]bool)
		used     []string
		attempts int
	)
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempts++
		used = append(used, q.Text)
		evidence = append(evidence, a.search.ExecuteQuery(ctx, f, q, seen)...)
		verdict = a.aggregator.Evaluate(evidence)
		if verdict.Status == domain.StatusConfirmed || verdict.Status == domain.StatusRefuted {
			break
		}
	}

	status := verdict.Status
	if status == domain.StatusPending {
		status = domain.StatusUnverifiable
	}

	result, err := domain.NewVerificationResult(factID, investigationID, status, c.CredibilityScore, verdict.Boost, attempts)
	if err != nil {
		return nil, err
	}
	result.Supporting = verdict.Supporting
	result.Refuting = verdict.Refuting
	result.QueriesUsed = used
	result.OriginDubiousFlags = append([]domain.DubiousFlag(nil), c.DubiousFlags...)

	// Critical-impact facts wait for a human: the result is stored but the
	// classification is left untouched until sign-off.
	if c.ImpactTier == domain.ImpactCritical {
		result.RequiresReview = true
		if err := a.verifications.SaveResult(ctx, result); err != nil {
			return nil, err
		}
		a.logger.Info("verification result held for human review",
			zap.String("fact_id", factID),
			zap.String("status", string(status)))
		return result, nil
	}

	if err := a.verifications.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	if status == domain.StatusConfirmed || status == domain.StatusRefuted {
		if _, err := a.reclassifier.Reclassify(ctx, investigationID, factID, result); err != nil {
			return nil, err
		}
	}

	a.logger.Info("fact verified",
		zap.String("fact_id", factID),
		zap.String("status", string(status)),
		zap.Int("query_attempts", attempts),
		zap.Float64("confidence_boost", verdict.Boost))
	return result, nil
}

// VerifyInvestigation snapshots the priority queue and works through it in
// fixed-size batches with a counting semaphore bounding concurrency. One
// fact's failure never aborts its siblings.
func (a *VerificationAgent) VerifyInvestigation(ctx context.Context, investigationID uuid.UUID) (*VerificationStats, error) {
	queue, err := a.classifications.PriorityQueue(ctx, investigationID)
	if err != nil {
		return nil, err
	}

	stats := &VerificationStats{
		InvestigationID: investigationID,
		TotalQueued:     len(queue),
	}
	if len(queue) == 0 {
		return stats, nil
	}

	a.logger.Info("starting verification run",
		zap.String("investigation_id", investigationID.String()),
		zap.Int("queued", len(queue)),
		zap.Int("batch_size", a.batchSize))

	for start := 0; start < len(queue); start += a.batchSize {
		end := start + a.batchSize
		if end > len(queue) {
			end = len(queue)
		}
		a.verifyBatch(ctx, investigationID, queue[start:end], stats)
	}
	return stats, nil
}

func (a *VerificationAgent) verifyBatch(ctx context.Context, investigationID uuid.UUID, batch []domain.Classification, stats *VerificationStats) {
	sem := semaphore.NewWeighted(int64(a.batchSize))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := range batch {
		factID := batch[i].FactID
		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			// Background sweeps have no chi Recoverer above them; a panic
			// in one fact's path must not take down the process.
			defer func() {
				if rec := recover(); rec != nil {
					mu.Lock()
					stats.Failed++
					mu.Unlock()
					a.logger.Error("fact verification panicked",
						zap.String("fact_id", factID), zap.Any("panic", rec))
				}
			}()

			result, err := a.VerifyFact(ctx, investigationID, factID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				a.logger.Error("fact verification failed",
					zap.String("fact_id", factID), zap.Error(err))
				return
			}
			if result == nil {
				return
			}
			stats.TotalVerified++
			switch result.Status {
			case domain.StatusConfirmed:
				stats.Confirmed++
			case domain.StatusRefuted:
				stats.Refuted++
			case domain.StatusUnverifiable:
				stats.Unverifiable++
			}
			if result.RequiresReview {
				stats.PendingReview++
			}
		}()
	}
	wg.Wait()
}

// CompleteReview finalizes a human-reviewed result: marks it reviewed and,
// unless rejected, applies the held reclassification.
func (a *VerificationAgent) CompleteReview(ctx context.Context, investigationID uuid.UUID, factID, notes string, approve bool) error {
	if err := a.verifications.MarkReviewed(ctx, investigationID, factID, notes); err != nil {
		return err
	}
	if !approve {
		return nil
	}
	result, err := a.verifications.GetResult(ctx, investigationID, factID)
	if err != nil {
		return err
	}
	if result.Status != domain.StatusConfirmed && result.Status != domain.StatusRefuted {
		return nil
	}
	_, err = a.reclassifier.Reclassify(ctx, investigationID, factID, result)
	return err
}
