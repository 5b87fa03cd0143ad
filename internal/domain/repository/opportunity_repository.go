package repository

import (
	"context"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/errors"
)

// OpportunityRepository persists cost-saving opportunities. Opportunities are
// replaced wholesale per evaluation run rather than updated in place.
type OpportunityRepository interface {
	// ReplaceForWindow deletes the tenant's opportunities for the window and inserts
	// the new set atomically.
	ReplaceForWindow(ctx context.Context, tenantID string, w Window, opportunities []*models.Opportunity) *errors.AppError

	// List retrieves the tenant's current opportunities.
	List(ctx context.Context, tenantID string, limit int) ([]*models.Opportunity, *errors.AppError)
}
