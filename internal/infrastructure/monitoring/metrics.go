package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/airops/pkg/constants"
)

// Metrics manages the engine's Prometheus metrics.
type Metrics struct {
	EvaluationRuns    *prometheus.CounterVec
	EvaluationLatency *prometheus.HistogramVec
	ScoresCounter     *prometheus.CounterVec
	SkippedCounter    *prometheus.CounterVec
	AlertsRaised      *prometheus.CounterVec
	DeliveryFailures  *prometheus.CounterVec
	RecordCacheHits   *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EvaluationRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_evaluation_runs_total",
				Help: "Total number of evaluation runs.",
			},
			[]string{"tenant_id", "result"},
		),
		EvaluationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airops_evaluation_latency_seconds",
				Help:    "Wall-clock duration of evaluation runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tenant_id"},
		),
		ScoresCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_scores_computed_total",
				Help: "Total number of scores computed.",
			},
			[]string{"tenant_id", "kind"},
		),
		SkippedCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_entities_skipped_total",
				Help: "Total number of entities skipped for insufficient data.",
			},
			[]string{"tenant_id"},
		),
		AlertsRaised: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_alerts_raised_total",
				Help: "Total number of alerts opened.",
			},
			[]string{"tenant_id", "severity"},
		),
		DeliveryFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_alert_delivery_failures_total",
				Help: "Total number of failed alert deliveries.",
			},
			[]string{"tenant_id"},
		),
		RecordCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airops_record_cache_requests_total",
				Help: "Record cache lookups by outcome.",
			},
			[]string{"tenant_id", "outcome"},
		),
	}
}

// ObserveRun records one evaluation run.
func (m *Metrics) ObserveRun(tenantID string, elapsed time.Duration, failed bool) {
	result := "success"
	if failed {
		result = "failure"
	}
	m.EvaluationRuns.WithLabelValues(tenantID, result).Inc()
	m.EvaluationLatency.WithLabelValues(tenantID).Observe(elapsed.Seconds())
}

// ScoresComputed records computed scores by kind.
func (m *Metrics) ScoresComputed(tenantID string, kind constants.ScoreKind, n int) {
	if n > 0 {
		m.ScoresCounter.WithLabelValues(tenantID, string(kind)).Add(float64(n))
	}
}

// EntitiesSkipped records entities skipped for insufficient data.
func (m *Metrics) EntitiesSkipped(tenantID string, n int) {
	if n > 0 {
		m.SkippedCounter.WithLabelValues(tenantID).Add(float64(n))
	}
}

// AlertsOpened records newly opened alerts by severity.
func (m *Metrics) AlertsOpened(tenantID string, severity constants.AlertSeverity, n int) {
	if n > 0 {
		m.AlertsRaised.WithLabelValues(tenantID, string(severity)).Add(float64(n))
	}
}

// RecordDeliveryFailure records a failed alert delivery.
func (m *Metrics) RecordDeliveryFailure(tenantID string) {
	m.DeliveryFailures.WithLabelValues(tenantID).Inc()
}

// CacheHit records a record cache lookup outcome.
func (m *Metrics) CacheHit(tenantID string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.RecordCacheHits.WithLabelValues(tenantID, outcome).Inc()
}
