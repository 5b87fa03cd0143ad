// Package repository defines the storage interfaces of the engine. Every access is
// scoped by tenant; implementations must apply the tenant predicate on each query.
package repository

import (
	"context"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/errors"
)

// TenantRepository defines the interface for interacting with tenant storage.
type TenantRepository interface {
	// FindByID retrieves a tenant by its identifier, including configuration.
	FindByID(ctx context.Context, tenantID string) (*models.Tenant, *errors.AppError)

	// FindActive retrieves all tenants currently participating in evaluation.
	FindActive(ctx context.Context) ([]*models.Tenant, *errors.AppError)

	// Save persists a new tenant.
	Save(ctx context.Context, tenant *models.Tenant) *errors.AppError

	// Update updates a tenant's configuration or status.
	Update(ctx context.Context, tenant *models.Tenant) *errors.AppError
}
