package repository

import (
	"context"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
)

// AlertRepository persists alerts. At most one open alert exists per
// (tenant, type, subject); the alert engine's dedup pass and the store's partial
// uniqueness constraint maintain that jointly.
type AlertRepository interface {
	// FindOpen retrieves all open alerts for the tenant.
	FindOpen(ctx context.Context, tenantID string) ([]*models.Alert, *errors.AppError)

	// FindOpenBySubject retrieves the open alert for (tenant, type, subject), or nil
	// when none is open.
	FindOpenBySubject(ctx context.Context, tenantID string, alertType constants.AlertType, subject string) (*models.Alert, *errors.AppError)

	// FindByID retrieves an alert by id within the tenant boundary.
	FindByID(ctx context.Context, tenantID, alertID string) (*models.Alert, *errors.AppError)

	// List retrieves the tenant's alerts, optionally restricted to open ones.
	List(ctx context.Context, tenantID string, openOnly bool, limit int) ([]*models.Alert, *errors.AppError)

	// Save persists a new alert.
	Save(ctx context.Context, alert *models.Alert) *errors.AppError

	// Update persists resolution or recency changes to an existing alert.
	Update(ctx context.Context, alert *models.Alert) *errors.AppError
}
