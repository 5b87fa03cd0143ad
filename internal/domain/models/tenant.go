// Package models defines the domain models for the AirOps risk and alerting engine.
// This file contains the Tenant domain model and its per-tenant configuration.
package models

import (
	"time"

	"github.com/turtacn/airops/pkg/constants"
)

// Tenant represents one airline operator in the multi-tenant analytics system.
// Each tenant exclusively owns its operational records, scores, opportunities and
// alerts; no entity is ever shared across tenants.
type Tenant struct {
	// TenantID is the unique identifier for the tenant.
	TenantID string `json:"tenant_id" gorm:"column:tenant_id;primaryKey"`

	// Code is the short airline code, e.g. "PIA".
	Code string `json:"code" gorm:"column:code;uniqueIndex"`

	// Name is the display name of the airline.
	Name string `json:"name" gorm:"column:name"`

	// Status indicates the lifecycle status of the tenant. Tenants are never hard
	// deleted while historical data exists; they are soft-retired instead.
	Status constants.TenantStatus `json:"status" gorm:"column:status"`

	// Thresholds carries the operator-tunable evaluation thresholds.
	Thresholds ThresholdConfig `json:"thresholds" gorm:"column:thresholds;serializer:json"`

	// Features carries the per-tenant feature flags. A disabled feature skips the
	// corresponding evaluation stage entirely.
	Features FeatureFlags `json:"features" gorm:"column:features;serializer:json"`

	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	RetiredAt *time.Time `json:"retired_at,omitempty" gorm:"column:retired_at"`
}

// TableName maps the model to its table.
func (Tenant) TableName() string { return "tenants" }

// ThresholdConfig defines the tenant-scoped severity bands and efficiency targets.
// Values are supplied as configuration so operators can tune without code changes.
type ThresholdConfig struct {
	// DelayWarning and DelayCritical are the delay-probability severity bands.
	// Boundaries are inclusive: a score exactly at a band takes the higher severity.
	DelayWarning  float64 `json:"delay_warning"`
	DelayCritical float64 `json:"delay_critical"`

	// MaintenanceWarning and MaintenanceCritical are the maintenance-risk bands on
	// the [0,100] scale.
	MaintenanceWarning  float64 `json:"maintenance_warning"`
	MaintenanceCritical float64 `json:"maintenance_critical"`

	// FuelLitersPerHourTarget is the fuel efficiency target; an observed ratio above
	// it triggers a fuel opportunity.
	FuelLitersPerHourTarget float64 `json:"fuel_liters_per_hour_target"`

	// DeadheadRatioTarget is the acceptable share of deadhead crew flights.
	DeadheadRatioTarget float64 `json:"deadhead_ratio_target"`

	// LoadFactorTarget is the minimum acceptable seat load factor; observing below
	// it triggers a revenue opportunity.
	LoadFactorTarget float64 `json:"load_factor_target"`

	// FuelPricePerLiter converts excess fuel burn into estimated savings.
	FuelPricePerLiter float64 `json:"fuel_price_per_liter"`

	// DeadheadCostPerFlight converts excess deadhead positioning into estimated
	// savings.
	DeadheadCostPerFlight float64 `json:"deadhead_cost_per_flight"`

	// OpportunityCriticalSaving escalates a cost opportunity alert to critical when
	// its estimated monthly saving reaches this amount.
	OpportunityCriticalSaving float64 `json:"opportunity_critical_saving"`

	// EvaluationBudgetSeconds bounds a single evaluation run; zero means the
	// engine-wide default applies.
	EvaluationBudgetSeconds int `json:"evaluation_budget_seconds"`

	// RecordCacheTTLSeconds bounds staleness of cached record reads for this tenant;
	// zero means the engine-wide default applies.
	RecordCacheTTLSeconds int `json:"record_cache_ttl_seconds"`
}

// FeatureFlags enables or disables evaluation stages per tenant.
type FeatureFlags struct {
	DelayPrediction     bool `json:"delay_prediction"`
	MaintenanceAlerts   bool `json:"maintenance_alerts"`
	CostOptimization    bool `json:"cost_optimization"`
	FuelEfficiency      bool `json:"fuel_efficiency"`
	RevenueOptimization bool `json:"revenue_optimization"`
}

// TenantContext is the resolved, credential-free view of a tenant handed to every
// engine operation. All downstream calls require one; operations without a
// TenantContext are rejected (fail-closed isolation).
type TenantContext struct {
	TenantID   string
	Code       string
	Name       string
	Thresholds ThresholdConfig
	Features   FeatureFlags
}

// NewTenant creates a Tenant with default thresholds and all features enabled.
func NewTenant(tenantID, code, name string) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		TenantID:   tenantID,
		Code:       code,
		Name:       name,
		Status:     constants.TenantStatusActive,
		Thresholds: DefaultThresholds(),
		Features: FeatureFlags{
			DelayPrediction:     true,
			MaintenanceAlerts:   true,
			CostOptimization:    true,
			FuelEfficiency:      true,
			RevenueOptimization: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultThresholds returns the onboarding threshold configuration.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		DelayWarning:              constants.DefaultDelayWarningThreshold,
		DelayCritical:             constants.DefaultDelayCriticalThreshold,
		MaintenanceWarning:        constants.DefaultMaintenanceWarningThreshold,
		MaintenanceCritical:       constants.DefaultMaintenanceCriticalThreshold,
		FuelLitersPerHourTarget:   constants.DefaultFuelLitersPerHourTarget,
		DeadheadRatioTarget:       constants.DefaultDeadheadRatioTarget,
		LoadFactorTarget:          constants.DefaultLoadFactorTarget,
		FuelPricePerLiter:         constants.DefaultFuelPricePerLiter,
		DeadheadCostPerFlight:     constants.DefaultDeadheadCostPerFlight,
		OpportunityCriticalSaving: constants.DefaultOpportunityCriticalSaving,
	}
}

// Context builds the TenantContext for this tenant.
func (t *Tenant) Context() *TenantContext {
	return &TenantContext{
		TenantID:   t.TenantID,
		Code:       t.Code,
		Name:       t.Name,
		Thresholds: t.Thresholds,
		Features:   t.Features,
	}
}

// IsActive reports whether the tenant participates in evaluation runs.
func (t *Tenant) IsActive() bool {
	return t.Status == constants.TenantStatusActive && t.RetiredAt == nil
}

// Retire soft-retires the tenant, keeping historical data.
func (t *Tenant) Retire(at time.Time) {
	t.Status = constants.TenantStatusRetired
	t.RetiredAt = &at
	t.UpdatedAt = at
}
