// Package redis holds the Redis-backed collaborators of the evaluation pipeline:
// the tenant-scoped record cache and the per-tenant evaluation lock.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/pkg/logger"
)

// RedisConnection wraps the go-redis client with lifecycle management.
type RedisConnection struct {
	Client *redis.Client
	log    logger.Logger
}

// NewRedisConnection creates a client from configuration and verifies
// connectivity with a ping.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) (*RedisConnection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info(ctx, "redis connection established", logger.String("addr", cfg.Addr))
	return &RedisConnection{Client: client, log: log}, nil
}

// Close releases the client's connection pool.
func (c *RedisConnection) Close() error {
	return c.Client.Close()
}

// Ping checks connection health.
func (c *RedisConnection) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
