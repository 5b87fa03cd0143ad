package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/airops/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/airops/internal/infrastructure/persistence/redis"
	"github.com/turtacn/airops/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	db    *postgres.DBConnection
	redis *redis.RedisConnection
	log   logger.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *postgres.DBConnection, redis *redis.RedisConnection, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, log: log}
}

// LivenessCheck reports whether the process is running.
// GET /health/live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now().UTC()})
}

// ReadinessCheck reports whether the service can reach its dependencies.
// GET /health/ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := h.performChecks(c.Request.Context())

	status := "ready"
	httpStatus := http.StatusOK
	for _, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	checks := make(map[string]string)

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			h.log.Warn(ctx, "readiness check failed", logger.String("check", name), logger.Error(err))
			checks[name] = err.Error()
			return
		}
		checks[name] = "ok"
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		record("database", h.db.Ping(ctx))
	}()
	go func() {
		defer wg.Done()
		record("redis", h.redis.Ping(ctx))
	}()
	wg.Wait()

	return checks
}
