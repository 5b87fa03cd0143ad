// Package constants defines system-wide constants for the AirOps risk and alerting engine.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Tenant Status Constants
// ================================================================================

// TenantStatus represents the lifecycle status of a tenant.
type TenantStatus string

const (
	// TenantStatusActive indicates the tenant is onboarded and evaluated.
	TenantStatusActive TenantStatus = "active"

	// TenantStatusSuspended indicates the tenant is temporarily excluded from evaluation.
	TenantStatusSuspended TenantStatus = "suspended"

	// TenantStatusRetired indicates the tenant is soft-retired. Historical data is kept
	// but no new evaluation runs are scheduled.
	TenantStatusRetired TenantStatus = "retired"
)

// ================================================================================
// Score Kind Constants
// ================================================================================

// ScoreKind identifies which scoring function produced a score.
type ScoreKind string

const (
	// ScoreKindDelayProbability is a per-flight delay probability in [0,1].
	ScoreKindDelayProbability ScoreKind = "delay_probability"

	// ScoreKindMaintenanceRisk is a per-aircraft maintenance risk in [0,100].
	ScoreKindMaintenanceRisk ScoreKind = "maintenance_risk"
)

// ================================================================================
// Alert Constants
// ================================================================================

// AlertSeverity classifies an alert by urgency.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Rank returns a comparable ordering for severities. Higher is more urgent.
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AlertType identifies the triggering condition class of an alert.
type AlertType string

const (
	AlertTypeDelayRisk       AlertType = "delay_risk"
	AlertTypeMaintenanceRisk AlertType = "maintenance_risk"
	AlertTypeCostOpportunity AlertType = "cost_opportunity"
)

// ================================================================================
// Opportunity Area Constants
// ================================================================================

// OpportunityArea identifies which efficiency ratio produced a cost opportunity.
type OpportunityArea string

const (
	// AreaFuel covers fuel burn per flight hour against the tenant target.
	AreaFuel OpportunityArea = "fuel"

	// AreaCrew covers deadhead crew positioning against the tenant target.
	AreaCrew OpportunityArea = "crew"

	// AreaRevenue covers seat load factor against the tenant target.
	AreaRevenue OpportunityArea = "revenue"
)

// ================================================================================
// Feature Constants
// ================================================================================

// Categorical feature values used when an optional upstream field is absent.
const (
	// WeatherUnknown is the neutral category for a missing weather condition.
	WeatherUnknown = "unknown"

	// RouteUnknown is the neutral category for a flight without airport codes.
	RouteUnknown = "unknown"
)

// Feature keys shared between the extractor and the scorers.
const (
	FeatureHourOfDay         = "hour_of_day"
	FeatureDayOfWeek         = "day_of_week"
	FeatureSeason            = "season"
	FeatureRoute             = "route"
	FeatureAircraftType      = "aircraft_type"
	FeatureWeatherCondition  = "weather_condition"
	FeatureWindSpeed         = "wind_speed_mps"
	FeatureRouteDelayRate    = "route_delay_rate"
	FeatureFlightHours       = "total_flight_hours"
	FeatureCycles            = "total_cycles"
	FeatureAgeYears          = "age_years"
	FeatureDaysSinceMaint    = "days_since_maintenance"
)

// ================================================================================
// Evaluation Defaults
// ================================================================================

const (
	// DefaultEvaluationBudget bounds a single tenant evaluation run.
	DefaultEvaluationBudget = 2 * time.Minute

	// DefaultEvaluationWindow is the rolling window of operational records considered.
	DefaultEvaluationWindow = 30 * 24 * time.Hour

	// DefaultRecordCacheTTL bounds staleness of cached record reads.
	DefaultRecordCacheTTL = 5 * time.Minute

	// DefaultTenantCacheTTL bounds staleness of resolved tenant contexts.
	DefaultTenantCacheTTL = 5 * time.Minute

	// DefaultEvaluationConcurrency bounds parallel tenant runs in EvaluateAll.
	DefaultEvaluationConcurrency = 4

	// RecordCacheKeyGranularity buckets default window bounds so consecutive runs
	// within the same bucket share cached record reads. Explicit request bounds
	// are never bucketed.
	RecordCacheKeyGranularity = time.Minute

	// AlertPersistRetryDelay is the backoff before the single persistence retry.
	AlertPersistRetryDelay = 200 * time.Millisecond

	// EvaluationLockMargin is added to the run budget when setting the lock TTL so a
	// crashed holder cannot block the tenant forever.
	EvaluationLockMargin = 30 * time.Second
)

// Default tenant threshold configuration. Operators tune these per tenant; the
// defaults apply at onboarding.
const (
	DefaultDelayWarningThreshold  = 0.5
	DefaultDelayCriticalThreshold = 0.8

	DefaultMaintenanceWarningThreshold  = 50.0
	DefaultMaintenanceCriticalThreshold = 75.0

	DefaultFuelLitersPerHourTarget = 1.8
	DefaultDeadheadRatioTarget     = 0.05
	DefaultLoadFactorTarget        = 0.75
	DefaultFuelPricePerLiter       = 0.85

	// DefaultDeadheadCostPerFlight is the standing estimate for one deadhead
	// positioning.
	DefaultDeadheadCostPerFlight = 450.0

	// DefaultOpportunityCriticalSaving escalates a cost opportunity alert to
	// critical when the estimated monthly saving reaches this amount.
	DefaultOpportunityCriticalSaving = 10000.0
)

// ================================================================================
// Logging Constants
// ================================================================================

// LogLevel represents the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String returns the lowercase name of the level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLogLevel converts a level name into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	case "fatal":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode is a machine-readable error classification shared with pkg/errors.
type ErrorCode string

const (
	ErrCodeUnknownTenant          ErrorCode = "unknown_tenant"
	ErrCodeInsufficientData       ErrorCode = "insufficient_data"
	ErrCodeAlertPersistenceFailed ErrorCode = "alert_persistence_failed"
	ErrCodeDeliveryFailed         ErrorCode = "delivery_failed"
	ErrCodeInvalidRequest         ErrorCode = "invalid_request"
	ErrCodeUnauthorized           ErrorCode = "unauthorized"
	ErrCodeNotFound               ErrorCode = "not_found"
	ErrCodeConflict               ErrorCode = "conflict"
	ErrCodeEvaluationBusy         ErrorCode = "evaluation_busy"
	ErrCodeInternal               ErrorCode = "internal_error"
	ErrCodeUnavailable            ErrorCode = "service_unavailable"
)
