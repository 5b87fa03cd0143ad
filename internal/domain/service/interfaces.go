// Package service contains the domain services of the engine: feature extraction,
// risk scoring, cost analysis and alerting, plus the collaborator interfaces they
// depend on. Scoring and extraction are pure; side effects live behind the
// interfaces defined here.
package service

import (
	"context"
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/errors"
)

// ================================================================================
// Delivery Collaborator
// ================================================================================

// Notifier delivers alert events to operators. Delivery is fire-and-forget:
// failures are logged by the caller and never roll back a persisted alert.
type Notifier interface {
	// Notify publishes a newly opened alert.
	Notify(ctx context.Context, alert *models.Alert) error

	// Close releases the underlying transport.
	Close() error
}

// ================================================================================
// Evaluation Lock
// ================================================================================

// EvaluationLocker enforces at-most-one concurrent evaluation run per tenant. The
// token is held from feature extraction through alert persistence.
type EvaluationLocker interface {
	// Acquire obtains the tenant's evaluation token. Returns ErrEvaluationBusy when
	// another run holds it. The ttl guards against a crashed holder.
	Acquire(ctx context.Context, tenantID string, ttl time.Duration) (Unlocker, *errors.AppError)
}

// Unlocker releases an acquired evaluation token.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// ================================================================================
// Record Cache
// ================================================================================

// RecordCache is a bounded-TTL, tenant-scoped cache in front of the record store.
// Entries are never shared across tenants; a cache miss or failure falls through to
// the repository.
type RecordCache interface {
	GetFlights(ctx context.Context, tenantID string, w repository.Window) ([]*models.FlightRecord, bool)
	SetFlights(ctx context.Context, tenantID string, w repository.Window, flights []*models.FlightRecord, ttl time.Duration)

	GetAircraft(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, bool)
	SetAircraft(ctx context.Context, tenantID string, asOf time.Time, aircraft []*models.AircraftRecord, ttl time.Duration)

	// Invalidate drops all cached entries for the tenant.
	Invalidate(ctx context.Context, tenantID string) error
}
