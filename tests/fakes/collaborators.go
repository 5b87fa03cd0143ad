package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/errors"
)

// ================================================================================
// Notifier
// ================================================================================

// FakeNotifier records delivered alerts. FailNext makes the next Notify call fail.
type FakeNotifier struct {
	mu        sync.Mutex
	delivered []*models.Alert
	FailNext  bool
}

// NewFakeNotifier creates a FakeNotifier.
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailNext {
		n.FailNext = false
		return fmt.Errorf("broker unavailable")
	}
	n.delivered = append(n.delivered, alert)
	return nil
}

func (n *FakeNotifier) Close() error { return nil }

// Delivered returns the alerts delivered so far.
func (n *FakeNotifier) Delivered() []*models.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*models.Alert(nil), n.delivered...)
}

var _ service.Notifier = (*FakeNotifier)(nil)

// ================================================================================
// Evaluation Locker
// ================================================================================

// FakeLocker implements per-tenant mutual exclusion in memory.
type FakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewFakeLocker creates a FakeLocker.
func NewFakeLocker() *FakeLocker {
	return &FakeLocker{held: make(map[string]bool)}
}

func (l *FakeLocker) Acquire(ctx context.Context, tenantID string, ttl time.Duration) (service.Unlocker, *errors.AppError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[tenantID] {
		return nil, errors.ErrEvaluationBusy(tenantID)
	}
	l.held[tenantID] = true
	return &fakeUnlocker{locker: l, tenantID: tenantID}, nil
}

// Held reports whether the tenant's token is currently taken.
func (l *FakeLocker) Held(tenantID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[tenantID]
}

type fakeUnlocker struct {
	locker   *FakeLocker
	tenantID string
}

func (u *fakeUnlocker) Unlock(ctx context.Context) error {
	u.locker.mu.Lock()
	defer u.locker.mu.Unlock()
	delete(u.locker.held, u.tenantID)
	return nil
}

var _ service.EvaluationLocker = (*FakeLocker)(nil)

// ================================================================================
// Record Cache
// ================================================================================

// FakeRecordCache is a map-backed service.RecordCache that ignores TTLs.
type FakeRecordCache struct {
	mu       sync.Mutex
	flights  map[string][]*models.FlightRecord
	aircraft map[string][]*models.AircraftRecord
	Hits     int
	Misses   int
}

// NewFakeRecordCache creates a FakeRecordCache.
func NewFakeRecordCache() *FakeRecordCache {
	return &FakeRecordCache{
		flights:  make(map[string][]*models.FlightRecord),
		aircraft: make(map[string][]*models.AircraftRecord),
	}
}

func flightKey(tenantID string, w repository.Window) string {
	return fmt.Sprintf("%s|%d|%d", tenantID, w.Start.UnixNano(), w.End.UnixNano())
}

func aircraftKey(tenantID string, asOf time.Time) string {
	return fmt.Sprintf("%s|%d", tenantID, asOf.UnixNano())
}

func (c *FakeRecordCache) GetFlights(ctx context.Context, tenantID string, w repository.Window) ([]*models.FlightRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[flightKey(tenantID, w)]
	if ok {
		c.Hits++
	} else {
		c.Misses++
	}
	return f, ok
}

func (c *FakeRecordCache) SetFlights(ctx context.Context, tenantID string, w repository.Window, flights []*models.FlightRecord, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights[flightKey(tenantID, w)] = flights
}

func (c *FakeRecordCache) GetAircraft(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.aircraft[aircraftKey(tenantID, asOf)]
	if ok {
		c.Hits++
	} else {
		c.Misses++
	}
	return a, ok
}

func (c *FakeRecordCache) SetAircraft(ctx context.Context, tenantID string, asOf time.Time, aircraft []*models.AircraftRecord, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aircraft[aircraftKey(tenantID, asOf)] = aircraft
}

func (c *FakeRecordCache) Invalidate(ctx context.Context, tenantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.flights {
		if len(k) >= len(tenantID) && k[:len(tenantID)] == tenantID {
			delete(c.flights, k)
		}
	}
	for k := range c.aircraft {
		if len(k) >= len(tenantID) && k[:len(tenantID)] == tenantID {
			delete(c.aircraft, k)
		}
	}
	return nil
}

var _ service.RecordCache = (*FakeRecordCache)(nil)
