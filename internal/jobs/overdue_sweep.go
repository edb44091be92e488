package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	portssvc "github.com/sahelimmo/lotissement_app/internal/core/ports/services"
	"github.com/sahelimmo/lotissement_app/internal/middleware"
)

// OverdueSweeper periodically flags unsettled installments past their due date
// as late. The sweep itself is idempotent, so an overlapping or repeated run
// is harmless.
type OverdueSweeper struct {
	reconciliation portssvc.ReconciliationSvcFacade
	logger         *slog.Logger
	cron           *cron.Cron
}

// NewOverdueSweeper creates a sweeper scheduled by the given cron spec.
func NewOverdueSweeper(reconciliation portssvc.ReconciliationSvcFacade, logger *slog.Logger, spec string) (*OverdueSweeper, error) {
	s := &OverdueSweeper{
		reconciliation: reconciliation,
		logger:         logger.With(slog.String("job", "overdue_sweep")),
		cron:           cron.New(),
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron scheduler in its own goroutine.
func (s *OverdueSweeper) Start() {
	s.cron.Start()
	s.logger.Info("Overdue sweep scheduled")
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Overdue sweep stopped")
}

// RunOnce executes a single sweep as of now.
func (s *OverdueSweeper) RunOnce() {
	ctx := middleware.ContextWithLogger(context.Background(), s.logger)

	start := time.Now()
	flagged, err := s.reconciliation.MarkOverdueInstallments(ctx, start)
	if err != nil {
		s.logger.Error("Overdue sweep failed", slog.String("error", err.Error()), slog.Int("flagged", flagged))
		return
	}
	s.logger.Info("Overdue sweep completed",
		slog.Int("flagged", flagged),
		slog.Duration("took", time.Since(start)),
	)
}
