package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// OpportunityRepoImpl implements OpportunityRepository on PostgreSQL.
type OpportunityRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewOpportunityRepository creates the PostgreSQL opportunity repository.
func NewOpportunityRepository(db *gorm.DB, log logger.Logger) repository.OpportunityRepository {
	return &OpportunityRepoImpl{db: db, logger: log.WithComponent("OpportunityRepository")}
}

// ReplaceForWindow swaps the tenant's opportunity set in one transaction, so a
// reader never observes a partially replaced set.
func (r *OpportunityRepoImpl) ReplaceForWindow(ctx context.Context, tenantID string, w repository.Window, opportunities []*models.Opportunity) *errors.AppError {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.Opportunity{}).Error; err != nil {
			return err
		}
		if len(opportunities) == 0 {
			return nil
		}
		return tx.Create(opportunities).Error
	})
	if err != nil {
		r.logger.Error(ctx, "failed to replace opportunities", err, logger.String("tenant_id", tenantID))
		return errors.ErrStorage("replace opportunities", err)
	}
	return nil
}

func (r *OpportunityRepoImpl) List(ctx context.Context, tenantID string, limit int) ([]*models.Opportunity, *errors.AppError) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var opportunities []*models.Opportunity
	if err := query.Order("estimated_monthly_saving DESC").Find(&opportunities).Error; err != nil {
		r.logger.Error(ctx, "failed to list opportunities", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("list opportunities", err)
	}
	return opportunities, nil
}
