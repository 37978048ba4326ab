package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotewise/quotewise-backend/internal/cache"
	"github.com/quotewise/quotewise-backend/internal/cron"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/internal/reconcile"
	"github.com/quotewise/quotewise-backend/internal/upstream"
	"github.com/quotewise/quotewise-backend/pkg/config"
	"github.com/quotewise/quotewise-backend/pkg/db"
	"github.com/quotewise/quotewise-backend/pkg/instance"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/metrics"
	"github.com/quotewise/quotewise-backend/pkg/migrate"
	"github.com/quotewise/quotewise-backend/pkg/redis"
)

const lockNameFormat = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var refresher quotations.Store
	if cfg.Source.IsRemote() {
		client, err := upstream.New(cfg.Upstream, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create upstream client", err)
			os.Exit(1)
		}
		refresher = client.Quotations()
	} else {
		dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
		refresher = quotations.NewRepository(dbClient.DB())
	}

	var (
		lock        cron.Lock = &cron.LocalLock{}
		invalidator cache.Invalidator
	)
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
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
		if cfg.Cache.Shared {
			invalidator = reconcile.NewCaches(reconcile.CacheOptions{
				TTL:    cfg.Cache.TTL,
				Shared: redisClient,
				Logger: logg,
			})
		}
	}

	registry := cron.NewRegistry()
	job, err := cron.NewComputedPriceJob(cron.ComputedPriceJobParams{
		Logger:      logg,
		Refresher:   refresher,
		Invalidator: invalidator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create computed price job", err)
		os.Exit(1)
	}
	registry.Register(job)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}
