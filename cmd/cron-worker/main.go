package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beatspace-ads/beatspace-backend/internal/assets"
	"github.com/beatspace-ads/beatspace-backend/internal/campaigns"
	"github.com/beatspace-ads/beatspace-backend/internal/cron"
	"github.com/beatspace-ads/beatspace-backend/internal/notifications"
	"github.com/beatspace-ads/beatspace-backend/internal/offers"
	"github.com/beatspace-ads/beatspace-backend/internal/stats"
	"github.com/beatspace-ads/beatspace-backend/internal/users"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/db"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/metrics"
	"github.com/beatspace-ads/beatspace-backend/pkg/migrate"
	"github.com/beatspace-ads/beatspace-backend/pkg/redis"
)

const lockKeyFormat = "bs:cron-worker:lock:%s:%s"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	statsService, err := stats.NewService(stats.ServiceParams{
		Assets:    assets.NewRepository(dbClient.DB()),
		Campaigns: campaigns.NewRepository(dbClient.DB()),
		Offers:    offers.NewRepository(dbClient.DB()),
		Users:     users.NewRepository(dbClient.DB()),
		Cache:     redisClient,
		Config:    cfg.Stats,
		Logger:    logg,
	})
	requireResource(ctx, logg, "stats service", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "notifications service", err)

	statsJob, err := cron.NewStatsRefreshJob(cron.StatsRefreshJobParams{
		Logger:   logg,
		Stats:    statsService,
		Interval: cfg.Stats.RefreshInterval,
	})
	requireResource(ctx, logg, "stats refresh job", err)

	retentionJob, err := cron.NewNotificationRetentionJob(cron.NotificationRetentionJobParams{
		Logger:        logg,
		Notifications: notificationsService,
		RetentionDays: cfg.Notifications.RetentionDays,
		Interval:      24 * time.Hour,
	})
	requireResource(ctx, logg, "notification retention job", err)

	registry := cron.NewRegistry()
	registry.Register(statsJob)
	registry.Register(retentionJob)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Locks: func(job string, ttl time.Duration) (cron.Lock, error) {
			return cron.NewRedisLock(redisClient, lockKey(cfg.App.Env, job), ttl)
		},
		Metrics: metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	requireResource(ctx, logg, "cron service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "starting cron worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "cron worker shutting down gracefully")
}

func lockKey(env, job string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env, job)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
