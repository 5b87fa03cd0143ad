// Package router wires the REST API surface of the engine.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/internal/interfaces/http/handlers"
	"github.com/turtacn/airops/internal/interfaces/http/middleware"
	"github.com/turtacn/airops/pkg/logger"
)

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine            *gin.Engine
	config            *config.Config
	logger            logger.Logger
	healthHandler     *handlers.HealthHandler
	tenantHandler     *handlers.TenantHandler
	evaluationHandler *handlers.EvaluationHandler
	server            *http.Server
}

// NewRouter creates the router with its handlers.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	tenantHandler *handlers.TenantHandler,
	evaluationHandler *handlers.EvaluationHandler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:            gin.New(),
		config:            cfg,
		logger:            log,
		healthHandler:     healthHandler,
		tenantHandler:     tenantHandler,
		evaluationHandler: evaluationHandler,
	}
}

// SetupRoutes registers middleware and the API routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestLogger(r.logger))

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	auth := middleware.RequireJWT(&r.config.Auth, r.logger)

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/tenants", auth, r.tenantHandler.Onboard)
		v1.POST("/evaluate", auth, r.evaluationHandler.EvaluateAll)

		tenant := v1.Group("/tenants/:tenant_id")
		{
			tenant.GET("/config", r.tenantHandler.GetConfig)
			tenant.PUT("/config", auth, r.tenantHandler.UpdateConfig)
			tenant.POST("/evaluate", auth, r.evaluationHandler.Evaluate)
			tenant.GET("/alerts", r.evaluationHandler.ListAlerts)
			tenant.POST("/alerts/:alert_id/resolve", auth, r.evaluationHandler.ResolveAlert)
			tenant.GET("/opportunities", r.evaluationHandler.ListOpportunities)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "the requested resource was not found",
		})
	})
}

// Start runs the HTTP server until Stop is called or the listener fails.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine, primarily for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
