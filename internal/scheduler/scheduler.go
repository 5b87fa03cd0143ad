// Package scheduler triggers periodic evaluation runs across all active
// tenants.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/pkg/logger"
)

// Scheduler runs EvaluateAll on a fixed interval. Per-tenant locking inside the
// evaluation service makes an overlapping tick harmless; the busy tenant is
// reported as a failure and retried on the next tick.
type Scheduler struct {
	evaluations service.EvaluationAppService
	interval    time.Duration
	logger      logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewScheduler creates a scheduler with the given tick interval.
func NewScheduler(evaluations service.EvaluationAppService, interval time.Duration, log logger.Logger) *Scheduler {
	return &Scheduler{
		evaluations: evaluations,
		interval:    interval,
		logger:      log.WithComponent("Scheduler"),
	}
}

// Start launches the tick loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.loop(ctx, s.stopped)
	s.logger.Info(ctx, "scheduler started", logger.Duration("interval", s.interval))
}

// Stop halts the tick loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.stopped = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (s *Scheduler) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.evaluations.EvaluateAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "scheduled evaluation failed", err)
		return
	}

	s.logger.Info(ctx, "scheduled evaluation completed",
		logger.Int("tenants", len(result.Results)),
		logger.Int("failures", len(result.Failures)))
	for tenantID, reason := range result.Failures {
		s.logger.Warn(ctx, "tenant evaluation failed",
			logger.String("tenant_id", tenantID),
			logger.String("reason", reason))
	}
}
