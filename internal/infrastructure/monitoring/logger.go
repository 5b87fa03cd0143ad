// Package monitoring provides the zap logger, prometheus metrics and tracing
// bootstrap for the engine.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/logger"
)

type zapLogger struct {
	zl    *zap.Logger
	level constants.LogLevel
}

// NewZapLogger creates the production JSON logger.
func NewZapLogger(cfg *config.LogConfig) (logger.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLevel, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapLevel)
	return &zapLogger{
		zl:    zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)),
		level: constants.ParseLogLevel(cfg.Level),
	}, nil
}

func (l *zapLogger) Debug(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Debug(message, convertFields(fields)...)
}

func (l *zapLogger) Info(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Info(message, convertFields(fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Warn(message, convertFields(fields)...)
}

func (l *zapLogger) Error(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Error(message, append(convertFields(fields), zap.Error(err))...)
}

func (l *zapLogger) Fatal(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Fatal(message, append(convertFields(fields), zap.Error(err))...)
}

func (l *zapLogger) WithFields(fields ...logger.Field) logger.Logger {
	return &zapLogger{zl: l.zl.With(convertFields(fields)...), level: l.level}
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl.With(zap.String("component", component)), level: l.level}
}

func (l *zapLogger) Level() constants.LogLevel {
	return l.level
}

func convertFields(fields []logger.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
