package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/logger"
)

var _ service.RecordCache = (*RecordCacheImpl)(nil)

// RecordCacheImpl caches window-scoped record reads in Redis. Every key embeds
// the tenant identifier so entries can never be served across tenants, and
// every entry carries a TTL so the cache self-bounds.
//
// The cache is strictly best-effort. Any Redis failure is logged and reported
// as a miss; the caller falls through to the record store.
type RecordCacheImpl struct {
	conn *RedisConnection
	log  logger.Logger
}

// NewRecordCache creates a Redis-backed record cache.
func NewRecordCache(conn *RedisConnection, log logger.Logger) *RecordCacheImpl {
	return &RecordCacheImpl{conn: conn, log: log}
}

func flightsKey(tenantID string, w repository.Window) string {
	return fmt.Sprintf("airops:records:%s:flights:%d:%d", tenantID, w.Start.UnixNano(), w.End.UnixNano())
}

func aircraftKey(tenantID string, asOf time.Time) string {
	return fmt.Sprintf("airops:records:%s:aircraft:%d", tenantID, asOf.UnixNano())
}

func tenantKeyPattern(tenantID string) string {
	return fmt.Sprintf("airops:records:%s:*", tenantID)
}

// GetFlights returns the cached flight set for the window, or a miss.
func (c *RecordCacheImpl) GetFlights(ctx context.Context, tenantID string, w repository.Window) ([]*models.FlightRecord, bool) {
	var flights []*models.FlightRecord
	if !c.get(ctx, flightsKey(tenantID, w), &flights) {
		return nil, false
	}
	return flights, true
}

// SetFlights stores the flight set for the window with the given TTL.
func (c *RecordCacheImpl) SetFlights(ctx context.Context, tenantID string, w repository.Window, flights []*models.FlightRecord, ttl time.Duration) {
	c.set(ctx, flightsKey(tenantID, w), flights, ttl)
}

// GetAircraft returns the cached aircraft snapshot set as of the given time, or
// a miss.
func (c *RecordCacheImpl) GetAircraft(ctx context.Context, tenantID string, asOf time.Time) ([]*models.AircraftRecord, bool) {
	var aircraft []*models.AircraftRecord
	if !c.get(ctx, aircraftKey(tenantID, asOf), &aircraft) {
		return nil, false
	}
	return aircraft, true
}

// SetAircraft stores the aircraft snapshot set with the given TTL.
func (c *RecordCacheImpl) SetAircraft(ctx context.Context, tenantID string, asOf time.Time, aircraft []*models.AircraftRecord, ttl time.Duration) {
	c.set(ctx, aircraftKey(tenantID, asOf), aircraft, ttl)
}

// Invalidate drops every cached entry belonging to the tenant.
func (c *RecordCacheImpl) Invalidate(ctx context.Context, tenantID string) error {
	iter := c.conn.Client.Scan(ctx, 0, tenantKeyPattern(tenantID), 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.conn.Client.Del(ctx, keys...).Err()
}

func (c *RecordCacheImpl) get(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.conn.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn(ctx, "record cache read failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn(ctx, "record cache entry corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (c *RecordCacheImpl) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn(ctx, "record cache marshal failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.conn.Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn(ctx, "record cache write failed", logger.String("key", key), logger.Error(err))
	}
}
