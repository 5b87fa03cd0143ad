package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/scheduler"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

type countingEvaluator struct {
	runs atomic.Int64
}

func (e *countingEvaluator) EvaluateTenant(ctx context.Context, tenantID string, req *dto.EvaluateRequest) (*dto.EvaluationResult, *errors.AppError) {
	return nil, errors.ErrInvalidRequest("not used")
}

func (e *countingEvaluator) EvaluateAll(ctx context.Context) (*dto.BatchEvaluationResult, *errors.AppError) {
	e.runs.Add(1)
	return &dto.BatchEvaluationResult{}, nil
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	evaluator := &countingEvaluator{}
	s := scheduler.NewScheduler(evaluator, 10*time.Millisecond, logger.NewNoopLogger())

	s.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	runs := evaluator.runs.Load()
	assert.GreaterOrEqual(t, runs, int64(2))
}

func TestScheduler_StopHaltsTicks(t *testing.T) {
	evaluator := &countingEvaluator{}
	s := scheduler.NewScheduler(evaluator, 10*time.Millisecond, logger.NewNoopLogger())

	s.Start(context.Background())
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	after := evaluator.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, evaluator.runs.Load())
}

func TestScheduler_StartTwiceIsNoop(t *testing.T) {
	evaluator := &countingEvaluator{}
	s := scheduler.NewScheduler(evaluator, time.Hour, logger.NewNoopLogger())

	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()

	// A second Stop on an already stopped scheduler is harmless too.
	s.Stop()
}
