package config

import (
	"fmt"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	PprofEnabled bool   `mapstructure:"pprof_enabled"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	AlertTopic   string        `mapstructure:"alert_topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

type AuthConfig struct {
	// SigningKey verifies bearer tokens on mutating admin routes.
	SigningKey string `mapstructure:"signing_key"`
	Issuer     string `mapstructure:"issuer"`
}

// EvaluationConfig carries engine-wide evaluation settings. Per-tenant thresholds
// live on the tenant record; these are the scheduler and fallback values.
type EvaluationConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Window         time.Duration `mapstructure:"window"`
	Budget         time.Duration `mapstructure:"budget"`
	Concurrency    int           `mapstructure:"concurrency"`
	TenantCacheTTL time.Duration `mapstructure:"tenant_cache_ttl"`
	RecordCacheTTL time.Duration `mapstructure:"record_cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Evaluation.Budget <= 0 {
		return fmt.Errorf("evaluation budget must be positive")
	}
	if c.Evaluation.Concurrency <= 0 {
		return fmt.Errorf("evaluation concurrency must be positive")
	}
	if c.Evaluation.Window <= 0 {
		return fmt.Errorf("evaluation window must be positive")
	}
	return nil
}
