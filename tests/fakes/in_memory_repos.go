// Package fakes provides in-memory collaborator implementations for tests.
package fakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
)

// ================================================================================
// Tenant Repository
// ================================================================================

// InMemoryTenantRepository is a map-backed repository.TenantRepository.
type InMemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*models.Tenant
}

// NewInMemoryTenantRepository creates an empty tenant repository.
func NewInMemoryTenantRepository() *InMemoryTenantRepository {
	return &InMemoryTenantRepository{tenants: make(map[string]*models.Tenant)}
}

func (r *InMemoryTenantRepository) FindByID(ctx context.Context, tenantID string) (*models.Tenant, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, errors.ErrUnknownTenant(tenantID)
	}
	cp := *t
	return &cp, nil
}

func (r *InMemoryTenantRepository) FindActive(ctx context.Context) ([]*models.Tenant, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Tenant
	for _, t := range r.tenants {
		if t.IsActive() {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (r *InMemoryTenantRepository) Save(ctx context.Context, tenant *models.Tenant) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.TenantID]; ok {
		return errors.ErrConflict("tenant already exists")
	}
	cp := *tenant
	r.tenants[tenant.TenantID] = &cp
	return nil
}

func (r *InMemoryTenantRepository) Update(ctx context.Context, tenant *models.Tenant) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.TenantID]; !ok {
		return errors.ErrUnknownTenant(tenant.TenantID)
	}
	cp := *tenant
	r.tenants[tenant.TenantID] = &cp
	return nil
}

var _ repository.TenantRepository = (*InMemoryTenantRepository)(nil)

// ================================================================================
// Record Repository
// ================================================================================

// InMemoryRecordRepository is an append-only repository.RecordRepository.
type InMemoryRecordRepository struct {
	mu       sync.RWMutex
	flights  []*models.FlightRecord
	aircraft []*models.AircraftRecord

	// FlightErr, when set, is returned by FlightsInWindow.
	FlightErr *errors.AppError
}

// NewInMemoryRecordRepository creates an empty record repository.
func NewInMemoryRecordRepository() *InMemoryRecordRepository {
	return &InMemoryRecordRepository{}
}

func (r *InMemoryRecordRepository) FlightsInWindow(ctx context.Context, tenantID string, w repository.Window) ([]*models.FlightRecord, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FlightErr != nil {
		return nil, r.FlightErr
	}
	var out []*models.FlightRecord
	for _, f := range r.flights {
		if f.TenantID == tenantID && w.Contains(f.ScheduledAt) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *InMemoryRecordRepository) LatestAircraftSnapshots(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := make(map[string]*models.AircraftRecord)
	for _, a := range r.aircraft {
		if a.TenantID != tenantID || a.RecordedAt.After(asOf) {
			continue
		}
		if cur, ok := latest[a.Registration]; !ok || a.RecordedAt.After(cur.RecordedAt) {
			latest[a.Registration] = a
		}
	}
	out := make([]*models.AircraftRecord, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration < out[j].Registration })
	return out, nil
}

func (r *InMemoryRecordRepository) AppendFlight(ctx context.Context, record *models.FlightRecord) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights = append(r.flights, record)
	return nil
}

func (r *InMemoryRecordRepository) AppendAircraft(ctx context.Context, record *models.AircraftRecord) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aircraft = append(r.aircraft, record)
	return nil
}

var _ repository.RecordRepository = (*InMemoryRecordRepository)(nil)

// ================================================================================
// Alert Repository
// ================================================================================

// InMemoryAlertRepository is a map-backed repository.AlertRepository. FailSaves
// makes the next N Save calls fail, which exercises the persist retry path.
type InMemoryAlertRepository struct {
	mu        sync.RWMutex
	alerts    map[string]*models.Alert
	FailSaves int
	SaveCalls int
}

// NewInMemoryAlertRepository creates an empty alert repository.
func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{alerts: make(map[string]*models.Alert)}
}

func (r *InMemoryAlertRepository) FindOpen(ctx context.Context, tenantID string) ([]*models.Alert, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Alert
	for _, a := range r.alerts {
		if a.TenantID == tenantID && !a.IsResolved {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryAlertRepository) FindOpenBySubject(ctx context.Context, tenantID string, alertType constants.AlertType, subject string) (*models.Alert, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.alerts {
		if a.TenantID == tenantID && !a.IsResolved && a.Type == alertType && a.Subject == subject {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryAlertRepository) FindByID(ctx context.Context, tenantID, alertID string) (*models.Alert, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alerts[alertID]
	if !ok || a.TenantID != tenantID {
		return nil, errors.ErrNotFound("alert", alertID)
	}
	cp := *a
	return &cp, nil
}

func (r *InMemoryAlertRepository) List(ctx context.Context, tenantID string, openOnly bool, limit int) ([]*models.Alert, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Alert
	for _, a := range r.alerts {
		if a.TenantID != tenantID {
			continue
		}
		if openOnly && a.IsResolved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryAlertRepository) Save(ctx context.Context, alert *models.Alert) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SaveCalls++
	if r.FailSaves > 0 {
		r.FailSaves--
		return errors.ErrStorage("save failed", nil)
	}
	cp := *alert
	r.alerts[alert.ID] = &cp
	return nil
}

func (r *InMemoryAlertRepository) Update(ctx context.Context, alert *models.Alert) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[alert.ID]; !ok {
		return errors.ErrNotFound("alert", alert.ID)
	}
	cp := *alert
	r.alerts[alert.ID] = &cp
	return nil
}

var _ repository.AlertRepository = (*InMemoryAlertRepository)(nil)

// ================================================================================
// Opportunity Repository
// ================================================================================

// InMemoryOpportunityRepository is a map-backed repository.OpportunityRepository.
type InMemoryOpportunityRepository struct {
	mu     sync.RWMutex
	byTent map[string][]*models.Opportunity
}

// NewInMemoryOpportunityRepository creates an empty opportunity repository.
func NewInMemoryOpportunityRepository() *InMemoryOpportunityRepository {
	return &InMemoryOpportunityRepository{byTent: make(map[string][]*models.Opportunity)}
}

func (r *InMemoryOpportunityRepository) ReplaceForWindow(ctx context.Context, tenantID string, w repository.Window, opportunities []*models.Opportunity) *errors.AppError {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTent[tenantID] = append([]*models.Opportunity(nil), opportunities...)
	return nil
}

func (r *InMemoryOpportunityRepository) List(ctx context.Context, tenantID string, limit int) ([]*models.Opportunity, *errors.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]*models.Opportunity(nil), r.byTent[tenantID]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.OpportunityRepository = (*InMemoryOpportunityRepository)(nil)
