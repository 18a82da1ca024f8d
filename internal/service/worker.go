package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

const defaultVerifyInterval = 30 * time.Minute

const verifyRunTimeout = 20 * time.Minute

// VerificationWorker periodically sweeps every known investigation's
// priority queue through the verification agent.
type VerificationWorker struct {
	agent           *VerificationAgent
	classifications domain.ClassificationStore
	logger          *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewVerificationWorker(agent *VerificationAgent, classifications domain.ClassificationStore, interval time.Duration, logger *zap.Logger) *VerificationWorker {
	if interval <= 0 {
		interval = defaultVerifyInterval
	}
	return &VerificationWorker{
		agent:           agent,
		classifications: classifications,
		logger:          logger,
		interval:        interval,
		stopCh:          make(chan struct{}),
	}
}

// Start begins the background verification worker.
func (w *VerificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("verification worker started", zap.Duration("interval", w.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), verifyRunTimeout)
				w.runSweep(ctx)
				cancel()
			case <-w.stopCh:
				w.logger.Info("verification worker stopped")
				return
			}
		}
	}()
}

// Stop halts the background verification worker.
func (w *VerificationWorker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// runSweep verifies every investigation in turn. Per-investigation failure
// is logged and the sweep moves on.
func (w *VerificationWorker) runSweep(ctx context.Context) {
	ids, err := w.classifications.ListInvestigationIDs(ctx)
	if err != nil {
		w.logger.Error("failed to list investigations", zap.Error(err))
		return
	}

	for _, id := range ids {
		stats, err := w.agent.VerifyInvestigation(ctx, id)
		if err != nil {
			w.logger.Error("verification sweep failed",
				zap.String("investigation_id", id.String()), zap.Error(err))
			continue
		}
		if stats.TotalQueued > 0 {
			w.logger.Info("verification sweep completed",
				zap.String("investigation_id", id.String()),
				zap.Int("queued", stats.TotalQueued),
				zap.Int("verified", stats.TotalVerified),
				zap.Int("confirmed", stats.Confirmed),
				zap.Int("refuted", stats.Refuted),
				zap.Int("unverifiable", stats.Unverifiable),
				zap.Int("pending_review", stats.PendingReview),
				zap.Int("failed", stats.Failed))
		}
	}
}
