package models

import (
	"time"

	"github.com/turtacn/airops/pkg/constants"
)

// Alert is a severity-classified event raised when a triggering condition is newly
// met. Lifecycle: absent -> open -> resolved; a resolved alert may reopen as a
// fresh instance. At most one alert is open per (tenant, type, subject) at a time.
// Alerts are never mutated after creation except for the resolution fields and the
// last-evaluated recency stamp.
type Alert struct {
	ID       string                  `json:"id" gorm:"column:id;primaryKey"`
	TenantID string                  `json:"tenant_id" gorm:"column:tenant_id;index:idx_alert_tenant_open"`
	Type     constants.AlertType     `json:"type" gorm:"column:type;index:idx_alert_tenant_open"`
	Subject  string                  `json:"subject" gorm:"column:subject;index:idx_alert_tenant_open"`
	Severity constants.AlertSeverity `json:"severity" gorm:"column:severity"`

	Message        string `json:"message" gorm:"column:message"`
	ActionRequired string `json:"action_required" gorm:"column:action_required"`

	IsResolved bool `json:"is_resolved" gorm:"column:is_resolved;index:idx_alert_tenant_open"`

	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	LastEvaluatedAt time.Time  `json:"last_evaluated_at" gorm:"column:last_evaluated_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" gorm:"column:resolved_at"`
}

func (Alert) TableName() string { return "alerts" }

// Resolve marks the alert resolved at the given time. Resolving an already
// resolved alert is a no-op.
func (a *Alert) Resolve(at time.Time) {
	if a.IsResolved {
		return
	}
	a.IsResolved = true
	a.ResolvedAt = &at
}

// Touch refreshes the recency stamp when a still-breaching condition is
// re-evaluated. The alert itself is not duplicated.
func (a *Alert) Touch(at time.Time, severity constants.AlertSeverity) {
	a.LastEvaluatedAt = at
	// Severity may escalate while open; it never de-escalates without resolving.
	if severity.Rank() > a.Severity.Rank() {
		a.Severity = severity
	}
}
