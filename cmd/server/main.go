package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appservice "github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/internal/config"
	domainservice "github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/internal/infrastructure/monitoring"
	"github.com/turtacn/airops/internal/infrastructure/notify"
	"github.com/turtacn/airops/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/airops/internal/infrastructure/persistence/redis"
	"github.com/turtacn/airops/internal/interfaces/http/handlers"
	"github.com/turtacn/airops/internal/interfaces/http/router"
	"github.com/turtacn/airops/internal/scheduler"
	"github.com/turtacn/airops/pkg/logger"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}
	defer db.Close()
	if err := postgres.Migrate(db.DB()); err != nil {
		appLogger.Fatal(ctx, "failed to run migrations", err)
	}

	redisConn, err := redis.NewRedisConnection(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisConn.Close()

	metrics := monitoring.NewMetrics()

	notifier := notify.NewKafkaNotifier(cfg.Kafka, metrics, appLogger)
	defer notifier.Close()

	tenantRepo := postgres.NewTenantRepository(db.DB(), appLogger)
	recordRepo := postgres.NewRecordRepository(db.DB(), appLogger)
	alertRepo := postgres.NewAlertRepository(db.DB(), appLogger)
	opportunityRepo := postgres.NewOpportunityRepository(db.DB(), appLogger)

	recordCache := redis.NewRecordCache(redisConn, appLogger)
	evaluationLock := redis.NewEvaluationLock(redisConn, appLogger)

	alertEngine := domainservice.NewAlertEngine(alertRepo, notifier, appLogger)
	delayScorer := domainservice.NewBaselineDelayScorer()

	tenantService := appservice.NewTenantAppService(tenantRepo, cfg.Evaluation.TenantCacheTTL, appLogger)
	evaluationService := appservice.NewEvaluationAppService(
		tenantService,
		recordRepo,
		opportunityRepo,
		recordCache,
		evaluationLock,
		delayScorer,
		alertEngine,
		metrics,
		appservice.EvaluationConfig{
			Window:      cfg.Evaluation.Window,
			Budget:      cfg.Evaluation.Budget,
			Concurrency: cfg.Evaluation.Concurrency,
			RecordTTL:   cfg.Evaluation.RecordCacheTTL,
		},
		appLogger,
	)
	alertService := appservice.NewAlertAppService(tenantService, alertRepo, opportunityRepo, alertEngine, appLogger)

	healthHandler := handlers.NewHealthHandler(db, redisConn, appLogger)
	tenantHandler := handlers.NewTenantHandler(tenantService, appLogger)
	evaluationHandler := handlers.NewEvaluationHandler(evaluationService, alertService, appLogger)

	httpRouter := router.NewRouter(cfg, appLogger, healthHandler, tenantHandler, evaluationHandler)

	evalScheduler := scheduler.NewScheduler(evaluationService, cfg.Evaluation.Interval, appLogger)
	evalScheduler.Start(ctx)
	defer evalScheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpRouter.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	case sig := <-quit:
		appLogger.Info(ctx, "shutdown signal received", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpRouter.Stop(shutdownCtx); err != nil {
		appLogger.Error(ctx, "HTTP server shutdown failed", err)
	}
}
