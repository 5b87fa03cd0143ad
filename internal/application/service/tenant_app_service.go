// Package service provides application-level services that orchestrate the domain
// services and repositories behind the HTTP and scheduler entry points.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// TenantAppService is the tenant registry and configuration surface. Resolve is on
// the hot path of every evaluation run; onboarding and config mutation are admin
// operations.
type TenantAppService interface {
	// Resolve maps a tenant identifier to its TenantContext. Unknown, suspended and
	// retired tenants fail with UnknownTenant; resolution never falls back to a
	// default tenant.
	Resolve(ctx context.Context, tenantID string) (*models.TenantContext, *errors.AppError)

	// Onboard registers a new airline operator with default thresholds.
	Onboard(ctx context.Context, req *dto.OnboardTenantRequest) (*dto.TenantResponse, *errors.AppError)

	// GetConfig returns the tenant's current configuration.
	GetConfig(ctx context.Context, tenantID string) (*dto.TenantResponse, *errors.AppError)

	// UpdateConfig replaces the tenant's thresholds or feature flags. The change
	// takes effect on the next evaluation run.
	UpdateConfig(ctx context.Context, tenantID string, req *dto.UpdateTenantConfigRequest) (*dto.TenantResponse, *errors.AppError)

	// ListActive returns the tenants participating in evaluation runs.
	ListActive(ctx context.Context) ([]*models.TenantContext, *errors.AppError)
}

type tenantAppServiceImpl struct {
	tenants repository.TenantRepository
	cache   *gocache.Cache
	ttl     time.Duration
	logger  logger.Logger
}

// NewTenantAppService creates the registry. cacheTTL bounds how long a resolved
// TenantContext may serve before the store is consulted again; configuration
// changes propagate within one TTL.
func NewTenantAppService(tenants repository.TenantRepository, cacheTTL time.Duration, log logger.Logger) TenantAppService {
	if cacheTTL <= 0 {
		cacheTTL = constants.DefaultTenantCacheTTL
	}
	return &tenantAppServiceImpl{
		tenants: tenants,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		ttl:     cacheTTL,
		logger:  log.WithComponent("TenantAppService"),
	}
}

func (s *tenantAppServiceImpl) Resolve(ctx context.Context, tenantID string) (*models.TenantContext, *errors.AppError) {
	if tenantID == "" {
		return nil, errors.ErrUnknownTenant(tenantID)
	}
	if cached, ok := s.cache.Get(tenantID); ok {
		return cached.(*models.TenantContext), nil
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, errors.ErrUnknownTenant(tenantID)
	}

	tctx := tenant.Context()
	s.cache.Set(tenantID, tctx, s.ttl)
	return tctx, nil
}

func (s *tenantAppServiceImpl) Onboard(ctx context.Context, req *dto.OnboardTenantRequest) (*dto.TenantResponse, *errors.AppError) {
	if req == nil || req.Code == "" || req.Name == "" {
		return nil, errors.ErrInvalidRequest("tenant code and name are required")
	}

	tenant := models.NewTenant(uuid.NewString(), req.Code, req.Name)
	if req.Thresholds != nil {
		tenant.Thresholds = *req.Thresholds
	}
	if req.Features != nil {
		tenant.Features = *req.Features
	}

	if err := s.tenants.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "tenant onboarded",
		logger.String("tenant_id", tenant.TenantID),
		logger.String("code", tenant.Code))
	return dto.FromTenant(tenant), nil
}

func (s *tenantAppServiceImpl) GetConfig(ctx context.Context, tenantID string) (*dto.TenantResponse, *errors.AppError) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.FromTenant(tenant), nil
}

func (s *tenantAppServiceImpl) UpdateConfig(ctx context.Context, tenantID string, req *dto.UpdateTenantConfigRequest) (*dto.TenantResponse, *errors.AppError) {
	if req == nil || (req.Thresholds == nil && req.Features == nil) {
		return nil, errors.ErrInvalidRequest("no configuration changes supplied")
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.Thresholds != nil {
		tenant.Thresholds = *req.Thresholds
	}
	if req.Features != nil {
		tenant.Features = *req.Features
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}

	// Drop the cached context so the change is visible immediately rather than
	// after TTL expiry.
	s.cache.Delete(tenantID)

	s.logger.Info(ctx, "tenant configuration updated", logger.String("tenant_id", tenantID))
	return dto.FromTenant(tenant), nil
}

func (s *tenantAppServiceImpl) ListActive(ctx context.Context) ([]*models.TenantContext, *errors.AppError) {
	tenants, err := s.tenants.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.TenantContext, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, t.Context())
	}
	return out, nil
}
