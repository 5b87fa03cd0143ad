package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// AlertEngine turns scores and opportunities into a deduplicated, severity-ranked
// alert stream. State machine per (tenant, type, subject):
//
//	absent -> open      when a condition is newly met
//	open   -> open      re-evaluating a still-breaching condition refreshes recency,
//	                    never duplicates
//	open   -> resolved  when the condition clears or an operator resolves it
//
// Planning is pure given the currently open alerts; all side effects happen in
// Commit so a caller can abandon a budget-expired run without partial writes.
type AlertEngine struct {
	alerts   repository.AlertRepository
	notifier Notifier
	log      logger.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewAlertEngine creates an AlertEngine.
func NewAlertEngine(alerts repository.AlertRepository, notifier Notifier, log logger.Logger) *AlertEngine {
	return &AlertEngine{
		alerts:   alerts,
		notifier: notifier,
		log:      log.WithComponent("AlertEngine"),
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    time.Sleep,
	}
}

// AlertBatch is the evaluated set of state transitions for one tenant run.
type AlertBatch struct {
	TenantID  string
	Opens     []*models.Alert
	Refreshes []*models.Alert
	Resolves  []*models.Alert

	// Skipped counts open alerts whose subject was not re-evaluated this run; they
	// stay open untouched.
	Skipped int
}

// Plan evaluates scores and opportunities against the tenant's open alerts and
// returns the resulting transitions without applying them.
func (e *AlertEngine) Plan(ctx context.Context, tctx *models.TenantContext, scores []models.Score, opportunities []*models.Opportunity) (*AlertBatch, *errors.AppError) {
	if tctx == nil || tctx.TenantID == "" {
		return nil, errors.ErrInvalidRequest("alert evaluation requires a tenant context")
	}

	open, err := e.alerts.FindOpen(ctx, tctx.TenantID)
	if err != nil {
		return nil, err
	}
	openByKey := make(map[string]*models.Alert, len(open))
	for _, a := range open {
		openByKey[alertKey(a.Type, a.Subject)] = a
	}

	now := e.now()
	batch := &AlertBatch{TenantID: tctx.TenantID}
	handled := make(map[string]bool)

	for _, score := range scores {
		alertType := alertTypeFor(score.Kind)
		key := alertKey(alertType, score.SubjectID)
		handled[key] = true

		severity, breaching := e.severityForScore(tctx, score)
		existing := openByKey[key]
		switch {
		case breaching && existing == nil:
			batch.Opens = append(batch.Opens, e.buildScoreAlert(tctx, score, severity, now))
		case breaching && existing != nil:
			existing.Touch(now, severity)
			batch.Refreshes = append(batch.Refreshes, existing)
		case !breaching && existing != nil:
			batch.Resolves = append(batch.Resolves, existing)
		}
	}

	seenAreas := make(map[constants.OpportunityArea]bool)
	for _, opp := range opportunities {
		if opp == nil {
			continue
		}
		seenAreas[opp.Area] = true
		key := alertKey(constants.AlertTypeCostOpportunity, string(opp.Area))
		handled[key] = true

		severity := constants.SeverityWarning
		if opp.EstimatedMonthlySaving >= tctx.Thresholds.OpportunityCriticalSaving {
			severity = constants.SeverityCritical
		}
		if existing := openByKey[key]; existing != nil {
			existing.Touch(now, severity)
			batch.Refreshes = append(batch.Refreshes, existing)
			continue
		}
		batch.Opens = append(batch.Opens, e.buildOpportunityAlert(tctx, opp, severity, now))
	}

	// A cost alert whose area produced no opportunity this run has cleared.
	for key, a := range openByKey {
		if handled[key] {
			continue
		}
		if a.Type == constants.AlertTypeCostOpportunity && !seenAreas[constants.OpportunityArea(a.Subject)] {
			batch.Resolves = append(batch.Resolves, a)
			continue
		}
		// Score alerts for subjects outside this run's window stay open until the
		// subject is evaluated again or an operator resolves them.
		batch.Skipped++
	}

	return batch, nil
}

// Commit applies a planned batch. New alerts are persisted with a single retry
// and backoff; a write that still fails surfaces as AlertPersistenceFailed and
// stops the commit with no partial alert visible for that condition. Delivery is
// best-effort after the persist succeeds.
func (e *AlertEngine) Commit(ctx context.Context, batch *AlertBatch) *errors.AppError {
	if batch == nil {
		return nil
	}

	for _, a := range batch.Opens {
		if err := e.saveWithRetry(ctx, a); err != nil {
			return err
		}
		if nErr := e.notifier.Notify(ctx, a); nErr != nil {
			e.log.Warn(ctx, "alert delivery failed",
				logger.String("tenant_id", a.TenantID),
				logger.String("alert_id", a.ID),
				logger.Error(errors.ErrDeliveryFailed(nErr)))
		}
	}

	for _, a := range batch.Refreshes {
		if err := e.alerts.Update(ctx, a); err != nil {
			e.log.Warn(ctx, "failed to refresh alert recency",
				logger.String("alert_id", a.ID), logger.Error(err))
		}
	}

	now := e.now()
	for _, a := range batch.Resolves {
		a.Resolve(now)
		if err := e.alerts.Update(ctx, a); err != nil {
			e.log.Warn(ctx, "failed to resolve alert",
				logger.String("alert_id", a.ID), logger.Error(err))
		}
	}

	return nil
}

// Run plans and commits in one call. Callers invoke it after the whole evaluation
// batch has been scored, which keeps half-evaluated alerts invisible.
func (e *AlertEngine) Run(ctx context.Context, tctx *models.TenantContext, scores []models.Score, opportunities []*models.Opportunity) (*AlertBatch, *errors.AppError) {
	batch, err := e.Plan(ctx, tctx, scores, opportunities)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ResolveAlert applies the operator resolution transition.
func (e *AlertEngine) ResolveAlert(ctx context.Context, tctx *models.TenantContext, alertID string) (*models.Alert, *errors.AppError) {
	if tctx == nil || tctx.TenantID == "" {
		return nil, errors.ErrInvalidRequest("alert resolution requires a tenant context")
	}
	alert, err := e.alerts.FindByID(ctx, tctx.TenantID, alertID)
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return alert, nil
	}
	alert.Resolve(e.now())
	if err := e.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (e *AlertEngine) saveWithRetry(ctx context.Context, a *models.Alert) *errors.AppError {
	err := e.alerts.Save(ctx, a)
	if err == nil {
		return nil
	}
	e.log.Warn(ctx, "alert persist failed, retrying",
		logger.String("alert_id", a.ID), logger.Error(err))
	e.sleep(constants.AlertPersistRetryDelay)

	if err = e.alerts.Save(ctx, a); err != nil {
		return errors.ErrAlertPersistenceFailed(err)
	}
	return nil
}

// severityForScore maps a score onto the tenant's severity bands. Bands are
// inclusive at the boundary: a value exactly at a threshold takes the higher
// severity.
func (e *AlertEngine) severityForScore(tctx *models.TenantContext, score models.Score) (constants.AlertSeverity, bool) {
	var warn, crit float64
	switch score.Kind {
	case constants.ScoreKindDelayProbability:
		warn, crit = tctx.Thresholds.DelayWarning, tctx.Thresholds.DelayCritical
	case constants.ScoreKindMaintenanceRisk:
		warn, crit = tctx.Thresholds.MaintenanceWarning, tctx.Thresholds.MaintenanceCritical
	default:
		return constants.SeverityInfo, false
	}

	switch {
	case score.Value >= crit:
		return constants.SeverityCritical, true
	case score.Value >= warn:
		return constants.SeverityWarning, true
	default:
		return constants.SeverityInfo, false
	}
}

func (e *AlertEngine) buildScoreAlert(tctx *models.TenantContext, score models.Score, severity constants.AlertSeverity, now time.Time) *models.Alert {
	var message, action string
	switch score.Kind {
	case constants.ScoreKindDelayProbability:
		message = fmt.Sprintf("Delay probability %.2f for flight %s", score.Value, score.SubjectID)
		action = "Review turnaround buffers and crew readiness for the affected flight"
	case constants.ScoreKindMaintenanceRisk:
		message = fmt.Sprintf("Maintenance risk %.0f for aircraft %s", score.Value, score.SubjectID)
		action = "Schedule a maintenance check for the affected aircraft"
	}
	return &models.Alert{
		ID:              uuid.NewString(),
		TenantID:        tctx.TenantID,
		Type:            alertTypeFor(score.Kind),
		Subject:         score.SubjectID,
		Severity:        severity,
		Message:         message,
		ActionRequired:  action,
		CreatedAt:       now,
		LastEvaluatedAt: now,
	}
}

func (e *AlertEngine) buildOpportunityAlert(tctx *models.TenantContext, opp *models.Opportunity, severity constants.AlertSeverity, now time.Time) *models.Alert {
	return &models.Alert{
		ID:              uuid.NewString(),
		TenantID:        tctx.TenantID,
		Type:            constants.AlertTypeCostOpportunity,
		Subject:         string(opp.Area),
		Severity:        severity,
		Message:         fmt.Sprintf("Estimated %.0f/month saving available in %s", opp.EstimatedMonthlySaving, opp.Area),
		ActionRequired:  opp.RecommendedAction,
		CreatedAt:       now,
		LastEvaluatedAt: now,
	}
}

func alertTypeFor(kind constants.ScoreKind) constants.AlertType {
	if kind == constants.ScoreKindMaintenanceRisk {
		return constants.AlertTypeMaintenanceRisk
	}
	return constants.AlertTypeDelayRisk
}

func alertKey(t constants.AlertType, subject string) string {
	return string(t) + "|" + subject
}
