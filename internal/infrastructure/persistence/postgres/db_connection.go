// Package postgres provides the PostgreSQL persistence layer of the engine. Every
// repository applies the tenant predicate on each query; rows are never visible
// across tenant boundaries.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/logger"
)

// DBConnection manages the database handle lifecycle.
type DBConnection struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger logger.Logger
}

// NewDBConnection opens the connection pool through the pgx stdlib driver and
// verifies connectivity.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	sqlDB := stdlib.OpenDB(*connCfg)

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	conn := &DBConnection{db: db, sqlDB: sqlDB, logger: log.WithComponent("DBConnection")}
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	log.Info(ctx, "database connection established",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database))
	return conn, nil
}

// DB returns the gorm handle.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// Ping verifies database connectivity.
func (c *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.sqlDB.PingContext(pingCtx); err != nil {
		c.logger.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *DBConnection) Close() error {
	return c.sqlDB.Close()
}

// Migrate creates or updates the engine's tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.FlightRecord{},
		&models.AircraftRecord{},
		&models.Alert{},
		&models.Opportunity{},
	)
}
