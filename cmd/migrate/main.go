// Package main provides a database migration runner.
package main

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/config"
	"github.com/cory-johannsen/petengine/internal/observability"
	"github.com/cory-johannsen/petengine/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrationsDir := flag.String("path", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("loading config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		zap.NewExample().Fatal("creating logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	state, err := postgres.Migrate(cfg.Database.DSN(), *migrationsDir, postgres.Direction(*direction), *steps)
	if err != nil {
		logger.Error("migration failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	fields := []zap.Field{
		zap.String("direction", *direction),
		zap.Uint("version", state.Version),
		zap.Bool("dirty", state.Dirty),
		zap.Duration("elapsed", time.Since(start)),
	}
	if !state.Changed {
		logger.Info("no changes", fields...)
		return
	}
	logger.Info("migrated", fields...)
}
