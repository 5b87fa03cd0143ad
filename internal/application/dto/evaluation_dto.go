package dto

import (
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
)

// EvaluateRequest triggers an evaluation run for one tenant. An omitted window
// defaults to the configured trailing evaluation window ending now.
type EvaluateRequest struct {
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

// EvaluationResult summarizes one tenant's evaluation run.
type EvaluationResult struct {
	TenantID        string        `json:"tenant_id"`
	WindowStart     time.Time     `json:"window_start"`
	WindowEnd       time.Time     `json:"window_end"`
	FlightsScored   int           `json:"flights_scored"`
	AircraftScored  int           `json:"aircraft_scored"`
	SkippedEntities int           `json:"skipped_entities"`
	Opportunities   int           `json:"opportunities"`
	AlertsOpened    int           `json:"alerts_opened"`
	AlertsResolved  int           `json:"alerts_resolved"`
	BudgetExpired   bool          `json:"budget_expired"`
	Elapsed         time.Duration `json:"elapsed"`
}

// BatchEvaluationResult aggregates an all-tenant run. Per-tenant failures are
// reported, never propagated; one tenant's failure must not stop the others.
type BatchEvaluationResult struct {
	Results  []*EvaluationResult `json:"results"`
	Failures map[string]string   `json:"failures,omitempty"`
}

// AlertResponse is the external view of an alert.
type AlertResponse struct {
	ID              string                  `json:"id"`
	TenantID        string                  `json:"tenant_id"`
	Type            constants.AlertType     `json:"type"`
	Subject         string                  `json:"subject"`
	Severity        constants.AlertSeverity `json:"severity"`
	Message         string                  `json:"message"`
	ActionRequired  string                  `json:"action_required"`
	IsResolved      bool                    `json:"is_resolved"`
	CreatedAt       time.Time               `json:"created_at"`
	LastEvaluatedAt time.Time               `json:"last_evaluated_at"`
	ResolvedAt      *time.Time              `json:"resolved_at,omitempty"`
}

// FromAlert maps the domain model to its response shape.
func FromAlert(a *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:              a.ID,
		TenantID:        a.TenantID,
		Type:            a.Type,
		Subject:         a.Subject,
		Severity:        a.Severity,
		Message:         a.Message,
		ActionRequired:  a.ActionRequired,
		IsResolved:      a.IsResolved,
		CreatedAt:       a.CreatedAt,
		LastEvaluatedAt: a.LastEvaluatedAt,
		ResolvedAt:      a.ResolvedAt,
	}
}

// OpportunityResponse is the external view of a cost opportunity.
type OpportunityResponse struct {
	ID                     string                    `json:"id"`
	Area                   constants.OpportunityArea `json:"area"`
	CurrentValue           float64                   `json:"current_value"`
	TargetValue            float64                   `json:"target_value"`
	EstimatedMonthlySaving float64                   `json:"estimated_monthly_saving"`
	RecommendedAction      string                    `json:"recommended_action"`
	WindowStart            time.Time                 `json:"window_start"`
	WindowEnd              time.Time                 `json:"window_end"`
}

// FromOpportunity maps the domain model to its response shape.
func FromOpportunity(o *models.Opportunity) *OpportunityResponse {
	return &OpportunityResponse{
		ID:                     o.ID,
		Area:                   o.Area,
		CurrentValue:           o.CurrentValue,
		TargetValue:            o.TargetValue,
		EstimatedMonthlySaving: o.EstimatedMonthlySaving,
		RecommendedAction:      o.RecommendedAction,
		WindowStart:            o.WindowStart,
		WindowEnd:              o.WindowEnd,
	}
}
