package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// RecordRepoImpl implements RecordRepository on PostgreSQL. Records are
// append-only; there is no update path.
type RecordRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewRecordRepository creates the PostgreSQL record repository.
func NewRecordRepository(db *gorm.DB, log logger.Logger) repository.RecordRepository {
	return &RecordRepoImpl{db: db, logger: log.WithComponent("RecordRepository")}
}

func (r *RecordRepoImpl) FlightsInWindow(ctx context.Context, tenantID string, w repository.Window) ([]*models.FlightRecord, *errors.AppError) {
	var flights []*models.FlightRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND scheduled_at >= ? AND scheduled_at < ?", tenantID, w.Start, w.End).
		Order("scheduled_at").
		Find(&flights).Error
	if err != nil {
		r.logger.Error(ctx, "failed to load flight records", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("load flights", err)
	}
	return flights, nil
}

// LatestAircraftSnapshots selects the newest snapshot per registration not newer
// than asOf, scoped to the tenant.
func (r *RecordRepoImpl) LatestAircraftSnapshots(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, *errors.AppError) {
	sub := r.db.WithContext(ctx).
		Model(&models.AircraftRecord{}).
		Select("registration, MAX(recorded_at) AS recorded_at").
		Where("tenant_id = ? AND recorded_at <= ?", tenantID, asOf).
		Group("registration")

	var aircraft []*models.AircraftRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN (?) latest ON aircraft_records.registration = latest.registration AND aircraft_records.recorded_at = latest.recorded_at", sub).
		Where("aircraft_records.tenant_id = ?", tenantID).
		Order("aircraft_records.registration").
		Find(&aircraft).Error
	if err != nil {
		r.logger.Error(ctx, "failed to load aircraft snapshots", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("load aircraft snapshots", err)
	}
	return aircraft, nil
}

func (r *RecordRepoImpl) AppendFlight(ctx context.Context, record *models.FlightRecord) *errors.AppError {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error(ctx, "failed to append flight record", err,
			logger.String("tenant_id", record.TenantID),
			logger.String("record_id", record.RecordID))
		return errors.ErrStorage("append flight", err)
	}
	return nil
}

func (r *RecordRepoImpl) AppendAircraft(ctx context.Context, record *models.AircraftRecord) *errors.AppError {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error(ctx, "failed to append aircraft snapshot", err,
			logger.String("tenant_id", record.TenantID),
			logger.String("registration", record.Registration))
		return errors.ErrStorage("append aircraft snapshot", err)
	}
	return nil
}
