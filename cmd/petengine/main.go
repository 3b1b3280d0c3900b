// Package main provides the pet engine process: it loads content, opens
// storage, runs background adventure reconciliation and serves gRPC health.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/config"
	"github.com/cory-johannsen/petengine/internal/observability"
	"github.com/cory-johannsen/petengine/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting pet engine",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("health_addr", cfg.Health.Addr()),
	)

	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing engine", zap.Error(err))
	}
	defer cleanup()

	lifecycle := newLifecycle(ctx, app, logger)

	logger.Info("pet engine initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

// newLifecycle registers the gRPC listener, the storage probe and, when
// enabled, the adventure reconciler.
func newLifecycle(ctx context.Context, app *App, logger *zap.Logger) *server.Lifecycle {
	lifecycle := server.NewLifecycle(logger)

	addr := app.Config.Health.Addr()
	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
			return app.GRPC.Serve(lis)
		},
		StopFn: func() {
			app.Health.Shutdown()
			app.GRPC.GracefulStop()
		},
	})

	probeLogger := observability.Component(logger, "probe")
	done := make(chan struct{})
	lifecycle.Add("storage-probe", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(app.Config.Health.CheckInterval)
			defer ticker.Stop()
			app.probe(ctx, probeLogger)
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					app.probe(ctx, probeLogger)
				}
			}
		},
		StopFn: func() { close(done) },
	})

	if app.Reconciler != nil {
		lifecycle.Add("reconciler", app.Reconciler)
	}
	return lifecycle
}
