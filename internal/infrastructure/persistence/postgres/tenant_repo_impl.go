package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// TenantRepoImpl implements TenantRepository on PostgreSQL.
type TenantRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTenantRepository creates the PostgreSQL tenant repository.
func NewTenantRepository(db *gorm.DB, log logger.Logger) repository.TenantRepository {
	return &TenantRepoImpl{db: db, logger: log.WithComponent("TenantRepository")}
}

func (r *TenantRepoImpl) FindByID(ctx context.Context, tenantID string) (*models.Tenant, *errors.AppError) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUnknownTenant(tenantID)
		}
		r.logger.Error(ctx, "failed to retrieve tenant", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("find tenant", err)
	}
	return &tenant, nil
}

func (r *TenantRepoImpl) FindActive(ctx context.Context) ([]*models.Tenant, *errors.AppError) {
	var tenants []*models.Tenant
	err := r.db.WithContext(ctx).
		Where("status = ? AND retired_at IS NULL", constants.TenantStatusActive).
		Order("tenant_id").
		Find(&tenants).Error
	if err != nil {
		r.logger.Error(ctx, "failed to list active tenants", err)
		return nil, errors.ErrStorage("list active tenants", err)
	}
	return tenants, nil
}

func (r *TenantRepoImpl) Save(ctx context.Context, tenant *models.Tenant) *errors.AppError {
	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now
	if tenant.Status == "" {
		tenant.Status = constants.TenantStatusActive
	}

	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		r.logger.Error(ctx, "failed to create tenant", err, logger.String("code", tenant.Code))
		return errors.ErrStorage("create tenant", err)
	}
	r.logger.Info(ctx, "tenant created",
		logger.String("tenant_id", tenant.TenantID),
		logger.String("code", tenant.Code))
	return nil
}

func (r *TenantRepoImpl) Update(ctx context.Context, tenant *models.Tenant) *errors.AppError {
	tenant.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenant.TenantID).
		Save(tenant)
	if result.Error != nil {
		r.logger.Error(ctx, "failed to update tenant", result.Error,
			logger.String("tenant_id", tenant.TenantID))
		return errors.ErrStorage("update tenant", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrUnknownTenant(tenant.TenantID)
	}
	return nil
}
