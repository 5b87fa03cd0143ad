package repository

import (
	"context"
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/errors"
)

// Window bounds a record query in time. Start is inclusive, End exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// RecordRepository reads and appends operational records. Records are immutable
// once finalized; status transitions append new rows rather than mutate history.
type RecordRepository interface {
	// FlightsInWindow retrieves the tenant's flight records scheduled inside the window.
	FlightsInWindow(ctx context.Context, tenantID string, w Window) ([]*models.FlightRecord, *errors.AppError)

	// LatestAircraftSnapshots retrieves the most recent utilisation snapshot per
	// airframe for the tenant, as of the window end.
	LatestAircraftSnapshots(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, *errors.AppError)

	// AppendFlight appends a finalized flight record.
	AppendFlight(ctx context.Context, record *models.FlightRecord) *errors.AppError

	// AppendAircraft appends an aircraft utilisation snapshot.
	AppendAircraft(ctx context.Context, record *models.AircraftRecord) *errors.AppError
}
