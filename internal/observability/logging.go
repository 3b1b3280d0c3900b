// Package observability builds the engine's zap loggers.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/petengine/internal/config"
)

// ServiceName is attached to every JSON log line as the "service" field.
const ServiceName = "petengine"

// NewLogger builds the process logger. JSON output is meant for deployed
// engines and carries the service field; console output is for local runs and
// omits stack traces.
//
// Precondition: cfg.Level is debug, info, warn or error and cfg.Format is
// json or console.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	zc, err := baseConfig(cfg.Format)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s logger: %w", cfg.Format, err)
	}
	return logger, nil
}

func baseConfig(format string) (zap.Config, error) {
	switch format {
	case "json":
		zc := zap.NewProductionConfig()
		zc.InitialFields = map[string]any{"service": ServiceName}
		return zc, nil
	case "console":
		zc := zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
		return zc, nil
	}
	return zap.Config{}, fmt.Errorf("unknown log format %q", format)
}

// Component returns a child logger named after an engine component.
func Component(logger *zap.Logger, name string) *zap.Logger {
	return logger.Named(name).With(zap.String("component", name))
}
