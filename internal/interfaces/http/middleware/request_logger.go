package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/airops/pkg/logger"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs each request with its latency
// and status.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		fields := []logger.Field{
			logger.String("request_id", requestID),
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", elapsed),
		}
		if tenantID := c.Param("tenant_id"); tenantID != "" {
			fields = append(fields, logger.String("tenant_id", tenantID))
		}

		if c.Writer.Status() >= 500 {
			log.Error(c.Request.Context(), "request failed", nil, fields...)
			return
		}
		log.Info(c.Request.Context(), "request completed", fields...)
	}
}
