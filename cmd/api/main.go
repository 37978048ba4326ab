package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/quotewise/quotewise-backend/api/controllers"
	"github.com/quotewise/quotewise-backend/api/routes"
	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/internal/ratios"
	"github.com/quotewise/quotewise-backend/internal/reconcile"
	"github.com/quotewise/quotewise-backend/internal/suppliers"
	"github.com/quotewise/quotewise-backend/pkg/config"
	"github.com/quotewise/quotewise-backend/pkg/env"
	"github.com/quotewise/quotewise-backend/pkg/instance"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/metrics"
	"github.com/quotewise/quotewise-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	src, err := openSources(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open data source", err)
		os.Exit(1)
	}
	defer src.close()

	checks := []controllers.ReadinessCheck{src.check}
	var shared cache.SharedStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
		if cfg.Cache.Shared {
			shared = redisClient
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svcs, err := buildServices(cfg, logg, registry, src, shared)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"instance":    instance.GetID(),
		"source_mode": cfg.Source.Mode,
		"cache_tier":  cacheTier(shared),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, svcs, checks...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, src *sources, shared cache.SharedStore) (routes.Services, error) {
	caches := reconcile.NewCaches(reconcile.CacheOptions{
		TTL:     cfg.Cache.TTL,
		Shared:  shared,
		Metrics: metrics.NewCacheMetrics(reg),
		Logger:  logg,
	})

	quoteSvc, err := quotations.NewService(quotations.ServiceParams{Store: src.quotations, Invalidator: caches, Logger: logg})
	if err != nil {
		return routes.Services{}, err
	}
	invSvc, err := inventory.NewService(src.inventory, cfg.Reconcile.UPCChunkSize)
	if err != nil {
		return routes.Services{}, err
	}
	bindSvc, err := bindings.NewService(bindings.ServiceParams{
		Store:       src.bindings,
		Invalidator: caches,
		Logger:      logg,
		BatchSize:   cfg.Reconcile.BindingBatchSize,
		Concurrency: cfg.Reconcile.BindingConcurrency,
	})
	if err != nil {
		return routes.Services{}, err
	}
	ratioSvc, err := ratios.NewService(ratios.ServiceParams{Store: src.ratios, Refresher: src.refresher, Invalidator: caches, Logger: logg})
	if err != nil {
		return routes.Services{}, err
	}
	supplierSvc, err := suppliers.NewService(src.suppliers)
	if err != nil {
		return routes.Services{}, err
	}
	reconcileSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Quotations: quoteSvc,
		Inventory:  invSvc,
		Bindings:   bindSvc,
		Caches:     caches,
		Metrics:    metrics.NewReconcileMetrics(reg),
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Reconcile:  reconcileSvc,
		Quotations: quoteSvc,
		Inventory:  invSvc,
		Bindings:   bindSvc,
		Ratios:     ratioSvc,
		Suppliers:  supplierSvc,
	}, nil
}

func cacheTier(shared cache.SharedStore) string {
	if shared == nil {
		return "memory"
	}
	return "memory+redis"
}
