package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// AlertRepoImpl implements AlertRepository on PostgreSQL.
type AlertRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewAlertRepository creates the PostgreSQL alert repository.
func NewAlertRepository(db *gorm.DB, log logger.Logger) repository.AlertRepository {
	return &AlertRepoImpl{db: db, logger: log.WithComponent("AlertRepository")}
}

func (r *AlertRepoImpl) FindOpen(ctx context.Context, tenantID string) ([]*models.Alert, *errors.AppError) {
	var alerts []*models.Alert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_resolved = ?", tenantID, false).
		Order("created_at").
		Find(&alerts).Error
	if err != nil {
		r.logger.Error(ctx, "failed to load open alerts", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("load open alerts", err)
	}
	return alerts, nil
}

func (r *AlertRepoImpl) FindOpenBySubject(ctx context.Context, tenantID string, alertType constants.AlertType, subject string) (*models.Alert, *errors.AppError) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND subject = ? AND is_resolved = ?",
			tenantID, alertType, subject, false).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error(ctx, "failed to load open alert", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("load open alert", err)
	}
	return &alert, nil
}

func (r *AlertRepoImpl) FindByID(ctx context.Context, tenantID, alertID string) (*models.Alert, *errors.AppError) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, alertID).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound("alert", alertID)
		}
		r.logger.Error(ctx, "failed to load alert", err, logger.String("alert_id", alertID))
		return nil, errors.ErrStorage("load alert", err)
	}
	return &alert, nil
}

func (r *AlertRepoImpl) List(ctx context.Context, tenantID string, openOnly bool, limit int) ([]*models.Alert, *errors.AppError) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if openOnly {
		query = query.Where("is_resolved = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []*models.Alert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		r.logger.Error(ctx, "failed to list alerts", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("list alerts", err)
	}
	return alerts, nil
}

func (r *AlertRepoImpl) Save(ctx context.Context, alert *models.Alert) *errors.AppError {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		r.logger.Error(ctx, "failed to persist alert", err,
			logger.String("tenant_id", alert.TenantID),
			logger.String("alert_id", alert.ID))
		return errors.ErrStorage("persist alert", err)
	}
	return nil
}

func (r *AlertRepoImpl) Update(ctx context.Context, alert *models.Alert) *errors.AppError {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", alert.TenantID, alert.ID).
		Save(alert)
	if result.Error != nil {
		r.logger.Error(ctx, "failed to update alert", result.Error, logger.String("alert_id", alert.ID))
		return errors.ErrStorage("update alert", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("alert", alert.ID)
	}
	return nil
}
