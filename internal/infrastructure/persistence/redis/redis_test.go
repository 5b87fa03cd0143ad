package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	redisinfra "github.com/turtacn/airops/internal/infrastructure/persistence/redis"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisinfra.RedisConnection) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn := &redisinfra.RedisConnection{
		Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { _ = conn.Client.Close() })
	return mr, conn
}

func testWindow() repository.Window {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return repository.Window{Start: start, End: start.Add(30 * 24 * time.Hour)}
}

func TestRecordCache_FlightsRoundtrip(t *testing.T) {
	_, conn := newTestRedis(t)
	cache := redisinfra.NewRecordCache(conn, logger.NewNoopLogger())
	ctx := context.Background()
	w := testWindow()

	_, hit := cache.GetFlights(ctx, "tenant-pia", w)
	assert.False(t, hit)

	flights := []*models.FlightRecord{
		{RecordID: "fl-1", TenantID: "tenant-pia", Departure: "KHI", Arrival: "ISB", ScheduledAt: w.Start.Add(time.Hour)},
		{RecordID: "fl-2", TenantID: "tenant-pia", Departure: "LHE", Arrival: "DXB", ScheduledAt: w.Start.Add(2 * time.Hour)},
	}
	cache.SetFlights(ctx, "tenant-pia", w, flights, time.Minute)

	got, hit := cache.GetFlights(ctx, "tenant-pia", w)
	require.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "fl-1", got[0].RecordID)
	assert.Equal(t, "KHI-ISB", got[0].Route())
}

func TestRecordCache_EntriesExpire(t *testing.T) {
	mr, conn := newTestRedis(t)
	cache := redisinfra.NewRecordCache(conn, logger.NewNoopLogger())
	ctx := context.Background()
	w := testWindow()

	cache.SetFlights(ctx, "tenant-pia", w, []*models.FlightRecord{{RecordID: "fl-1"}}, time.Minute)
	_, hit := cache.GetFlights(ctx, "tenant-pia", w)
	require.True(t, hit)

	mr.FastForward(2 * time.Minute)

	_, hit = cache.GetFlights(ctx, "tenant-pia", w)
	assert.False(t, hit)
}

func TestRecordCache_TenantKeysDoNotCollide(t *testing.T) {
	_, conn := newTestRedis(t)
	cache := redisinfra.NewRecordCache(conn, logger.NewNoopLogger())
	ctx := context.Background()
	w := testWindow()

	cache.SetFlights(ctx, "tenant-a", w, []*models.FlightRecord{{RecordID: "a-fl"}}, time.Minute)

	_, hit := cache.GetFlights(ctx, "tenant-b", w)
	assert.False(t, hit)

	got, hit := cache.GetFlights(ctx, "tenant-a", w)
	require.True(t, hit)
	assert.Equal(t, "a-fl", got[0].RecordID)
}

func TestRecordCache_InvalidateDropsOnlyTenant(t *testing.T) {
	_, conn := newTestRedis(t)
	cache := redisinfra.NewRecordCache(conn, logger.NewNoopLogger())
	ctx := context.Background()
	w := testWindow()
	asOf := w.End

	cache.SetFlights(ctx, "tenant-a", w, []*models.FlightRecord{{RecordID: "a-fl"}}, time.Minute)
	cache.SetAircraft(ctx, "tenant-a", asOf, []*models.AircraftRecord{{RecordID: "a-ac"}}, time.Minute)
	cache.SetFlights(ctx, "tenant-b", w, []*models.FlightRecord{{RecordID: "b-fl"}}, time.Minute)

	require.NoError(t, cache.Invalidate(ctx, "tenant-a"))

	_, hit := cache.GetFlights(ctx, "tenant-a", w)
	assert.False(t, hit)
	_, hit = cache.GetAircraft(ctx, "tenant-a", asOf)
	assert.False(t, hit)

	_, hit = cache.GetFlights(ctx, "tenant-b", w)
	assert.True(t, hit)
}

func TestRecordCache_AircraftRoundtrip(t *testing.T) {
	_, conn := newTestRedis(t)
	cache := redisinfra.NewRecordCache(conn, logger.NewNoopLogger())
	ctx := context.Background()
	asOf := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	aircraft := []*models.AircraftRecord{
		{RecordID: "ac-1", TenantID: "tenant-pia", Registration: "AP-BHV", TotalFlightHours: 45000},
	}
	cache.SetAircraft(ctx, "tenant-pia", asOf, aircraft, time.Minute)

	got, hit := cache.GetAircraft(ctx, "tenant-pia", asOf)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "AP-BHV", got[0].Registration)
	assert.Equal(t, 45000.0, got[0].TotalFlightHours)
}

func TestEvaluationLock_AcquireAndRelease(t *testing.T) {
	_, conn := newTestRedis(t)
	lock := redisinfra.NewEvaluationLock(conn, logger.NewNoopLogger())
	ctx := context.Background()

	unlock, err := lock.Acquire(ctx, "tenant-pia", time.Minute)
	require.Nil(t, err)

	_, err = lock.Acquire(ctx, "tenant-pia", time.Minute)
	require.NotNil(t, err)
	assert.True(t, errors.IsEvaluationBusy(err))

	require.NoError(t, unlock.Unlock(ctx))

	unlock2, err := lock.Acquire(ctx, "tenant-pia", time.Minute)
	require.Nil(t, err)
	require.NoError(t, unlock2.Unlock(ctx))
}

func TestEvaluationLock_IndependentPerTenant(t *testing.T) {
	_, conn := newTestRedis(t)
	lock := redisinfra.NewEvaluationLock(conn, logger.NewNoopLogger())
	ctx := context.Background()

	unlockA, err := lock.Acquire(ctx, "tenant-a", time.Minute)
	require.Nil(t, err)
	defer func() { _ = unlockA.Unlock(ctx) }()

	unlockB, err := lock.Acquire(ctx, "tenant-b", time.Minute)
	require.Nil(t, err)
	require.NoError(t, unlockB.Unlock(ctx))
}

func TestEvaluationLock_ExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	mr, conn := newTestRedis(t)
	lock := redisinfra.NewEvaluationLock(conn, logger.NewNoopLogger())
	ctx := context.Background()

	stale, err := lock.Acquire(ctx, "tenant-pia", time.Second)
	require.Nil(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := lock.Acquire(ctx, "tenant-pia", time.Minute)
	require.Nil(t, err)

	// The stale holder's release is a no-op; the fresh owner keeps the lock.
	require.NoError(t, stale.Unlock(ctx))
	_, err = lock.Acquire(ctx, "tenant-pia", time.Minute)
	require.NotNil(t, err)
	assert.True(t, errors.IsEvaluationBusy(err))

	require.NoError(t, fresh.Unlock(ctx))
}
