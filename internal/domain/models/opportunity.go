package models

import (
	"time"

	"github.com/turtacn/airops/pkg/constants"
)

// Opportunity is a detected cost-saving candidate for one tenant and area.
// Opportunities are recomputed per evaluation run over the rolling window, not
// incrementally updated.
type Opportunity struct {
	ID       string                    `json:"id" gorm:"column:id;primaryKey"`
	TenantID string                    `json:"tenant_id" gorm:"column:tenant_id;index"`
	Area     constants.OpportunityArea `json:"area" gorm:"column:area"`

	CurrentValue float64 `json:"current_value" gorm:"column:current_value"`
	TargetValue  float64 `json:"target_value" gorm:"column:target_value"`

	// EstimatedMonthlySaving is a deterministic function of
	// (observed - target) x volume x unit cost.
	EstimatedMonthlySaving float64 `json:"estimated_monthly_saving" gorm:"column:estimated_monthly_saving"`

	RecommendedAction string `json:"recommended_action" gorm:"column:recommended_action"`

	WindowStart time.Time `json:"window_start" gorm:"column:window_start"`
	WindowEnd   time.Time `json:"window_end" gorm:"column:window_end"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Opportunity) TableName() string { return "opportunities" }
