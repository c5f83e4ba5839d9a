package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"trafico/internal/backend"
	"trafico/internal/cache"
	"trafico/internal/cli"
	"trafico/internal/core"
	apphttp "trafico/internal/http"
	applog "trafico/internal/log"
	"trafico/internal/observability"
	"trafico/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	appLogger := applog.FromSlog(logger, applog.ComponentApp)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	be, err := backend.NewFactory(logger).CreateBackend(startCtx, backendConfig)
	cancelStart()
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	svc := services.NewDashboardService(be.Reader, services.DashboardConfig{
		Source: cfg.DataBackend,
		Limits: core.Limits{
			TopStations:    cfg.TopStations,
			TopDepartments: cfg.TopDepartments,
			MapDepartments: cfg.MapDepartments,
		},
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, nil, metrics, appLogger)

	cacheManager := cache.NewManager(nil, logger)
	cacheManager.Register(svc.Cache())
	cacheManager.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             appLogger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	srv.MaxHeaderBytes = 1 << 16

	var refresher *services.Refresher
	if cfg.RefreshInterval > 0 {
		refresher = services.NewRefresher(svc, cfg.RefreshInterval, nil)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if refresher != nil {
			if err := refresher.Stop(ctx); err != nil {
				logger.Warn("Refresher stop error", "error", err)
			}
		}
		cacheManager.Stop()
		if err := be.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	// The page answers 503 until the first load completes.
	go func() {
		if err := svc.Load(ctx); err != nil {
			logger.Error("Initial dataset load failed", "error", err, "backend", cfg.DataBackend)
		}
		if refresher != nil {
			if err := refresher.Start(ctx); err != nil {
				logger.Error("Failed to start refresher", "error", err)
			}
		}
	}()

	logger.Info("Starting trafico server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"refresh_interval", cfg.RefreshInterval)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
