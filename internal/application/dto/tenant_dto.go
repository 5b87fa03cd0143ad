// Package dto defines the request and response shapes of the application layer.
package dto

import (
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
)

// OnboardTenantRequest registers a new airline operator.
type OnboardTenantRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`

	// Thresholds is optional; absent fields fall back to the onboarding defaults.
	Thresholds *models.ThresholdConfig `json:"thresholds,omitempty"`
	Features   *models.FeatureFlags    `json:"features,omitempty"`
}

// UpdateTenantConfigRequest replaces a tenant's thresholds or feature flags.
type UpdateTenantConfigRequest struct {
	Thresholds *models.ThresholdConfig `json:"thresholds,omitempty"`
	Features   *models.FeatureFlags    `json:"features,omitempty"`
}

// TenantResponse is the external view of a tenant.
type TenantResponse struct {
	TenantID   string                 `json:"tenant_id"`
	Code       string                 `json:"code"`
	Name       string                 `json:"name"`
	Status     constants.TenantStatus `json:"status"`
	Thresholds models.ThresholdConfig `json:"thresholds"`
	Features   models.FeatureFlags    `json:"features"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// FromTenant maps the domain model to its response shape.
func FromTenant(t *models.Tenant) *TenantResponse {
	return &TenantResponse{
		TenantID:   t.TenantID,
		Code:       t.Code,
		Name:       t.Name,
		Status:     t.Status,
		Thresholds: t.Thresholds,
		Features:   t.Features,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
