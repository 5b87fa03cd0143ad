package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables.
// Precedence: environment > config file > defaults.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/airops/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, constants.ErrCodeInternal, "failed to read config file")
		}
	}

	v.SetEnvPrefix("AIROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, constants.ErrCodeInternal, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, constants.ErrCodeInvalidRequest, "invalid configuration")
	}

	// Reload evaluation settings in place when the file changes so operators can tune
	// scheduler cadence without a restart. Per-tenant thresholds are stored on the
	// tenant record and are not affected.
	v.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Warn(context.Background(), "ignoring config change, unmarshal failed",
				logger.String("file", e.Name), logger.Error(err))
			return
		}
		if err := next.Validate(); err != nil {
			log.Warn(context.Background(), "ignoring config change, validation failed",
				logger.String("file", e.Name), logger.Error(err))
			return
		}
		cfg.Evaluation = next.Evaluation
		log.Info(context.Background(), "evaluation config reloaded",
			logger.String("file", e.Name),
			logger.Duration("interval", cfg.Evaluation.Interval))
	})
	v.WatchConfig()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.pprof_enabled", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "airops")
	v.SetDefault("database.database", "airops")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.alert_topic", "airops.alerts")
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "1s")
	v.SetDefault("kafka.required_acks", -1)

	v.SetDefault("auth.issuer", "airops")

	v.SetDefault("evaluation.interval", "5m")
	v.SetDefault("evaluation.window", constants.DefaultEvaluationWindow)
	v.SetDefault("evaluation.budget", constants.DefaultEvaluationBudget)
	v.SetDefault("evaluation.concurrency", constants.DefaultEvaluationConcurrency)
	v.SetDefault("evaluation.tenant_cache_ttl", constants.DefaultTenantCacheTTL)
	v.SetDefault("evaluation.record_cache_ttl", constants.DefaultRecordCacheTTL)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "airops-engine")
	v.SetDefault("tracing.sampling_rate", 0.1)
}
