// Package jobs runs periodic background tasks
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/metrics"
	"github.com/nkiryanov/crownplay/internal/service/wallet"
)

const DefaultReconcileSpec = "@hourly"

type reconciler interface {
	Reconcile(ctx context.Context) ([]wallet.Mismatch, error)
}

type Scheduler struct {
	cron       *cron.Cron
	reconciler reconciler
	metrics    *metrics.Metrics
	logger     logger.Logger
}

func NewScheduler(r reconciler, m *metrics.Metrics, l logger.Logger) *Scheduler {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconciler: r,
		metrics:    m,
		logger:     l,
	}
}

// Schedule jobs and start the scheduler. ctx is passed to every run
func (s *Scheduler) Start(ctx context.Context, reconcileSpec string) error {
	if reconcileSpec == "" {
		reconcileSpec = DefaultReconcileSpec
	}

	_, err := s.cron.AddFunc(reconcileSpec, func() { s.Reconcile(ctx) })
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", reconcileSpec, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", "reconcile", reconcileSpec)
	return nil
}

// Stop scheduling and wait running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// Replay ledger against wallets once. Returns number of mismatched wallets
func (s *Scheduler) Reconcile(ctx context.Context) int {
	mismatches, err := s.reconciler.Reconcile(ctx)
	s.metrics.Reconciled(len(mismatches), err)

	if err != nil {
		s.logger.Error("Reconciliation failed", "error", err)
		return 0
	}

	for _, m := range mismatches {
		s.logger.Error("Wallet does not match ledger",
			"user_id", m.UserID,
			"wallet_gold", m.Wallet.Gold, "ledger_gold", m.Ledger.Gold,
			"wallet_sweep", m.Wallet.Sweep, "ledger_sweep", m.Ledger.Sweep,
		)
	}
	s.logger.Info("Reconciliation done", "mismatches", len(mismatches))

	return len(mismatches)
}
