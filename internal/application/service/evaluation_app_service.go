package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	domainService "github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// EvaluationMetrics receives evaluation observations. The monitoring package
// provides the prometheus-backed implementation; tests pass a no-op.
type EvaluationMetrics interface {
	ObserveRun(tenantID string, elapsed time.Duration, failed bool)
	ScoresComputed(tenantID string, kind constants.ScoreKind, n int)
	EntitiesSkipped(tenantID string, n int)
	AlertsOpened(tenantID string, severity constants.AlertSeverity, n int)
	CacheHit(tenantID string, hit bool)
}

// EvaluationAppService runs the scoring pipeline for tenants.
type EvaluationAppService interface {
	// EvaluateTenant performs one evaluation run for the tenant. At most one run per
	// tenant executes at a time; a concurrent attempt fails fast with
	// EvaluationBusy. The run is bounded by the tenant's wall-clock budget and
	// commits its alerts and opportunities only after the whole batch is evaluated.
	EvaluateTenant(ctx context.Context, tenantID string, req *dto.EvaluateRequest) (*dto.EvaluationResult, *errors.AppError)

	// EvaluateAll runs every active tenant with bounded concurrency. A failing
	// tenant is reported in the result and never aborts the others.
	EvaluateAll(ctx context.Context) (*dto.BatchEvaluationResult, *errors.AppError)
}

// EvaluationConfig carries the engine-wide evaluation settings. Tenant thresholds
// override budget and cache TTL per tenant.
type EvaluationConfig struct {
	Window      time.Duration
	Budget      time.Duration
	Concurrency int
	RecordTTL   time.Duration
}

type evaluationAppServiceImpl struct {
	registry      TenantAppService
	records       repository.RecordRepository
	opportunities repository.OpportunityRepository
	recordCache   domainService.RecordCache
	locker        domainService.EvaluationLocker
	extractor     *domainService.FeatureExtractor
	delayScorer   domainService.DelayScorer
	maintScorer   *domainService.MaintenanceScorer
	costAnalyzer  *domainService.CostAnalyzer
	alertEngine   *domainService.AlertEngine
	metrics       EvaluationMetrics
	cfg           EvaluationConfig
	logger        logger.Logger

	now func() time.Time
}

// NewEvaluationAppService wires the evaluation pipeline.
func NewEvaluationAppService(
	registry TenantAppService,
	records repository.RecordRepository,
	opportunities repository.OpportunityRepository,
	recordCache domainService.RecordCache,
	locker domainService.EvaluationLocker,
	delayScorer domainService.DelayScorer,
	alertEngine *domainService.AlertEngine,
	metrics EvaluationMetrics,
	cfg EvaluationConfig,
	log logger.Logger,
) EvaluationAppService {
	if cfg.Window <= 0 {
		cfg.Window = constants.DefaultEvaluationWindow
	}
	if cfg.Budget <= 0 {
		cfg.Budget = constants.DefaultEvaluationBudget
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = constants.DefaultEvaluationConcurrency
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = constants.DefaultRecordCacheTTL
	}
	return &evaluationAppServiceImpl{
		registry:      registry,
		records:       records,
		opportunities: opportunities,
		recordCache:   recordCache,
		locker:        locker,
		extractor:     domainService.NewFeatureExtractor(),
		delayScorer:   delayScorer,
		maintScorer:   domainService.NewMaintenanceScorer(),
		costAnalyzer:  domainService.NewCostAnalyzer(),
		alertEngine:   alertEngine,
		metrics:       metrics,
		cfg:           cfg,
		logger:        log.WithComponent("EvaluationAppService"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *evaluationAppServiceImpl) EvaluateTenant(ctx context.Context, tenantID string, req *dto.EvaluateRequest) (*dto.EvaluationResult, *errors.AppError) {
	tctx, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	budget := s.cfg.Budget
	if secs := tctx.Thresholds.EvaluationBudgetSeconds; secs > 0 {
		budget = time.Duration(secs) * time.Second
	}

	unlock, err := s.locker.Acquire(ctx, tenantID, budget+constants.EvaluationLockMargin)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := unlock.Unlock(context.WithoutCancel(ctx)); uerr != nil {
			s.logger.Warn(ctx, "failed to release evaluation lock",
				logger.String("tenant_id", tenantID), logger.Error(uerr))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	started := s.now()
	result, err := s.run(runCtx, tctx, s.window(req))
	elapsed := s.now().Sub(started)

	if s.metrics != nil {
		s.metrics.ObserveRun(tenantID, elapsed, err != nil)
	}
	if err != nil {
		s.logger.Error(ctx, "evaluation run failed", err,
			logger.String("tenant_id", tenantID),
			logger.Duration("elapsed", elapsed))
		return nil, err
	}

	result.Elapsed = elapsed
	result.BudgetExpired = runCtx.Err() != nil
	s.logger.Info(ctx, "evaluation run complete",
		logger.String("tenant_id", tenantID),
		logger.Int("flights_scored", result.FlightsScored),
		logger.Int("aircraft_scored", result.AircraftScored),
		logger.Int("skipped", result.SkippedEntities),
		logger.Int("alerts_opened", result.AlertsOpened),
		logger.Duration("elapsed", elapsed))
	return result, nil
}

// run executes the pipeline inside the budgeted context. All alert and
// opportunity writes happen at the end; a budget expiry mid-batch aborts with no
// partial state visible.
func (s *evaluationAppServiceImpl) run(ctx context.Context, tctx *models.TenantContext, w repository.Window) (*dto.EvaluationResult, *errors.AppError) {
	result := &dto.EvaluationResult{
		TenantID:    tctx.TenantID,
		WindowStart: w.Start,
		WindowEnd:   w.End,
	}

	flights, err := s.loadFlights(ctx, tctx, w)
	if err != nil {
		return nil, err
	}
	aircraft, err := s.loadAircraft(ctx, tctx, w.End)
	if err != nil {
		return nil, err
	}

	var scores []models.Score

	if tctx.Features.DelayPrediction {
		stats := domainService.ComputeRouteStats(flights, w.End)
		for _, f := range flights {
			if cerr := ctx.Err(); cerr != nil {
				return nil, errors.Wrap(cerr, constants.ErrCodeInternal, "evaluation budget exhausted")
			}
			fv, xerr := s.extractor.ExtractFlight(tctx, f, stats, w.End)
			if xerr != nil {
				if errors.IsInsufficientData(xerr) {
					result.SkippedEntities++
					continue
				}
				return nil, xerr
			}
			scores = append(scores, models.Score{
				TenantID:   tctx.TenantID,
				SubjectID:  fv.EntityID,
				Kind:       constants.ScoreKindDelayProbability,
				Value:      s.delayScorer.Score(fv),
				ComputedAt: s.now(),
			})
			result.FlightsScored++
		}
	}

	if tctx.Features.MaintenanceAlerts {
		for _, a := range aircraft {
			if cerr := ctx.Err(); cerr != nil {
				return nil, errors.Wrap(cerr, constants.ErrCodeInternal, "evaluation budget exhausted")
			}
			fv, xerr := s.extractor.ExtractAircraft(tctx, a, w.End)
			if xerr != nil {
				if errors.IsInsufficientData(xerr) {
					result.SkippedEntities++
					continue
				}
				return nil, xerr
			}
			scores = append(scores, models.Score{
				TenantID:   tctx.TenantID,
				SubjectID:  fv.EntityID,
				Kind:       constants.ScoreKindMaintenanceRisk,
				Value:      s.maintScorer.Score(fv),
				ComputedAt: s.now(),
			})
			result.AircraftScored++
		}
	}

	opportunities, err := s.costAnalyzer.Analyze(tctx, w, flights)
	if err != nil {
		return nil, err
	}
	result.Opportunities = len(opportunities)

	if cerr := ctx.Err(); cerr != nil {
		return nil, errors.Wrap(cerr, constants.ErrCodeInternal, "evaluation budget exhausted")
	}

	// Commit phase. Opportunities first, then alerts; both derive from the fully
	// evaluated batch.
	if err := s.opportunities.ReplaceForWindow(ctx, tctx.TenantID, w, opportunities); err != nil {
		return nil, err
	}
	batch, err := s.alertEngine.Run(ctx, tctx, scores, opportunities)
	if err != nil {
		return nil, err
	}
	result.AlertsOpened = len(batch.Opens)
	result.AlertsResolved = len(batch.Resolves)

	if s.metrics != nil {
		s.metrics.ScoresComputed(tctx.TenantID, constants.ScoreKindDelayProbability, result.FlightsScored)
		s.metrics.ScoresComputed(tctx.TenantID, constants.ScoreKindMaintenanceRisk, result.AircraftScored)
		s.metrics.EntitiesSkipped(tctx.TenantID, result.SkippedEntities)
		for _, a := range batch.Opens {
			s.metrics.AlertsOpened(tctx.TenantID, a.Severity, 1)
		}
	}
	return result, nil
}

func (s *evaluationAppServiceImpl) EvaluateAll(ctx context.Context) (*dto.BatchEvaluationResult, *errors.AppError) {
	tenants, err := s.registry.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.BatchEvaluationResult{Failures: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, tctx := range tenants {
		tenantID := tctx.TenantID
		g.Go(func() error {
			result, rerr := s.EvaluateTenant(gctx, tenantID, nil)
			mu.Lock()
			defer mu.Unlock()
			if rerr != nil {
				out.Failures[tenantID] = rerr.Error()
				return nil
			}
			out.Results = append(out.Results, result)
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	if werr := g.Wait(); werr != nil {
		return nil, errors.Wrap(werr, constants.ErrCodeInternal, "batch evaluation aborted")
	}
	if len(out.Failures) == 0 {
		out.Failures = nil
	}
	return out, nil
}

func (s *evaluationAppServiceImpl) window(req *dto.EvaluateRequest) repository.Window {
	// Default bounds snap to a coarse bucket so back-to-back runs (the scheduler
	// path) produce identical cache keys. Explicit bounds are honored exactly.
	end := s.now().Truncate(constants.RecordCacheKeyGranularity)
	if req != nil && req.WindowEnd != nil {
		end = req.WindowEnd.UTC()
	}
	start := end.Add(-s.cfg.Window)
	if req != nil && req.WindowStart != nil {
		start = req.WindowStart.UTC()
	}
	return repository.Window{Start: start, End: end}
}

func (s *evaluationAppServiceImpl) recordTTL(tctx *models.TenantContext) time.Duration {
	if secs := tctx.Thresholds.RecordCacheTTLSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return s.cfg.RecordTTL
}

func (s *evaluationAppServiceImpl) loadFlights(ctx context.Context, tctx *models.TenantContext, w repository.Window) ([]*models.FlightRecord, *errors.AppError) {
	if s.recordCache != nil {
		if cached, ok := s.recordCache.GetFlights(ctx, tctx.TenantID, w); ok {
			if s.metrics != nil {
				s.metrics.CacheHit(tctx.TenantID, true)
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheHit(tctx.TenantID, false)
		}
	}
	flights, err := s.records.FlightsInWindow(ctx, tctx.TenantID, w)
	if err != nil {
		return nil, err
	}
	if s.recordCache != nil {
		s.recordCache.SetFlights(ctx, tctx.TenantID, w, flights, s.recordTTL(tctx))
	}
	return flights, nil
}

func (s *evaluationAppServiceImpl) loadAircraft(ctx context.Context, tctx *models.TenantContext, asOf time.Time) ([]*models.AircraftRecord, *errors.AppError) {
	if s.recordCache != nil {
		if cached, ok := s.recordCache.GetAircraft(ctx, tctx.TenantID, asOf); ok {
			if s.metrics != nil {
				s.metrics.CacheHit(tctx.TenantID, true)
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheHit(tctx.TenantID, false)
		}
	}
	aircraft, err := s.records.LatestAircraftSnapshots(ctx, tctx.TenantID, asOf)
	if err != nil {
		return nil, err
	}
	if s.recordCache != nil {
		s.recordCache.SetAircraft(ctx, tctx.TenantID, asOf, aircraft, s.recordTTL(tctx))
	}
	return aircraft, nil
}
