package service

import (
	"context"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/domain/repository"
	domainservice "github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// AlertAppService exposes the alert and opportunity read paths plus the
// operator resolve transition.
type AlertAppService interface {
	// ListAlerts returns the tenant's alerts, optionally restricted to open ones.
	ListAlerts(ctx context.Context, tenantID string, openOnly bool, limit int) ([]*dto.AlertResponse, *errors.AppError)

	// ResolveAlert closes an open alert on operator request. Resolving an already
	// resolved alert is a no-op.
	ResolveAlert(ctx context.Context, tenantID, alertID string) (*dto.AlertResponse, *errors.AppError)

	// ListOpportunities returns the tenant's cost opportunities from the latest
	// committed evaluation run.
	ListOpportunities(ctx context.Context, tenantID string, limit int) ([]*dto.OpportunityResponse, *errors.AppError)
}

type AlertAppServiceImpl struct {
	registry      TenantAppService
	alerts        repository.AlertRepository
	opportunities repository.OpportunityRepository
	engine        *domainservice.AlertEngine
	logger        logger.Logger
}

var _ AlertAppService = (*AlertAppServiceImpl)(nil)

// NewAlertAppService creates the alert application service.
func NewAlertAppService(
	registry TenantAppService,
	alerts repository.AlertRepository,
	opportunities repository.OpportunityRepository,
	engine *domainservice.AlertEngine,
	log logger.Logger,
) *AlertAppServiceImpl {
	return &AlertAppServiceImpl{
		registry:      registry,
		alerts:        alerts,
		opportunities: opportunities,
		engine:        engine,
		logger:        log.WithComponent("AlertAppService"),
	}
}

func (s *AlertAppServiceImpl) ListAlerts(ctx context.Context, tenantID string, openOnly bool, limit int) ([]*dto.AlertResponse, *errors.AppError) {
	if _, err := s.registry.Resolve(ctx, tenantID); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.List(ctx, tenantID, openOnly, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.FromAlert(a))
	}
	return out, nil
}

func (s *AlertAppServiceImpl) ResolveAlert(ctx context.Context, tenantID, alertID string) (*dto.AlertResponse, *errors.AppError) {
	tctx, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	alert, err := s.engine.ResolveAlert(ctx, tctx, alertID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "alert resolved by operator",
		logger.String("tenant_id", tenantID),
		logger.String("alert_id", alertID))
	return dto.FromAlert(alert), nil
}

func (s *AlertAppServiceImpl) ListOpportunities(ctx context.Context, tenantID string, limit int) ([]*dto.OpportunityResponse, *errors.AppError) {
	if _, err := s.registry.Resolve(ctx, tenantID); err != nil {
		return nil, err
	}
	opportunities, err := s.opportunities.List(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OpportunityResponse, 0, len(opportunities))
	for _, o := range opportunities {
		out = append(out, dto.FromOpportunity(o))
	}
	return out, nil
}
