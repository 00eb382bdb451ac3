package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/beatspace-ads/beatspace-backend/api/routes"
	"github.com/beatspace-ads/beatspace-backend/internal/assets"
	authsvc "github.com/beatspace-ads/beatspace-backend/internal/auth"
	"github.com/beatspace-ads/beatspace-backend/internal/campaigns"
	"github.com/beatspace-ads/beatspace-backend/internal/notifications"
	"github.com/beatspace-ads/beatspace-backend/internal/offers"
	"github.com/beatspace-ads/beatspace-backend/internal/realtime"
	"github.com/beatspace-ads/beatspace-backend/internal/stats"
	"github.com/beatspace-ads/beatspace-backend/internal/users"
	"github.com/beatspace-ads/beatspace-backend/pkg/auth/session"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/db"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/maps"
	"github.com/beatspace-ads/beatspace-backend/pkg/metrics"
	"github.com/beatspace-ads/beatspace-backend/pkg/migrate"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox/idempotency"
	"github.com/beatspace-ads/beatspace-backend/pkg/pubsub"
	"github.com/beatspace-ads/beatspace-backend/pkg/redis"
)

const (
	shutdownGrace      = 10 * time.Second
	eventProcessedTTL  = 24 * time.Hour
	offersConsumerName = "offers-realtime"
	notifConsumerName  = "notifications-realtime"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	usersRepo := users.NewRepository(dbClient.DB())
	assetsRepo := assets.NewRepository(dbClient.DB())
	offersRepo := offers.NewRepository(dbClient.DB())
	campaignsRepo := campaigns.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	usersService, err := users.NewService(usersRepo, cfg.Password)
	requireResource(ctx, logg, "users service", err)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "auth service", err)

	assetsService, err := newAssetsService(ctx, cfg, logg, assetsRepo, dbClient, outboxService, usersRepo)
	requireResource(ctx, logg, "assets service", err)

	enricher := offers.NewEnricher(assetsRepo, logg, cfg.Offers.EnrichConcurrency)
	offersService, err := offers.NewService(offersRepo, dbClient, outboxService, enricher, assetsRepo, usersRepo, campaignsRepo)
	requireResource(ctx, logg, "offers service", err)

	campaignsService, err := campaigns.NewService(campaignsRepo, dbClient, outboxService, usersRepo)
	requireResource(ctx, logg, "campaigns service", err)

	notificationsService, err := notifications.NewService(notificationsRepo)
	requireResource(ctx, logg, "notifications service", err)

	statsService, err := stats.NewService(stats.ServiceParams{
		Assets:    assetsRepo,
		Campaigns: campaignsRepo,
		Offers:    offersRepo,
		Users:     usersRepo,
		Cache:     redisClient,
		Config:    cfg.Stats,
		Logger:    logg,
	})
	requireResource(ctx, logg, "stats service", err)

	hub := realtime.NewHub(cfg.Realtime, logg, metrics.NewRealtimeMetrics(prometheus.DefaultRegisterer))
	defer hub.Close()

	refresher := realtime.NewRefresher(cfg.Realtime.RefreshQuietPeriod, func(ctx context.Context) {
		if _, err := statsService.Refresh(ctx); err != nil {
			logg.Error(ctx, "stats refresh after offer activity failed", err)
		}
	}, logg)
	defer refresher.Close()

	dispatcher, err := realtime.NewDispatcher(notificationsRepo, hub, refresher, logg)
	requireResource(ctx, logg, "realtime dispatcher", err)

	idemManager, err := idempotency.NewManager(redisClient, eventProcessedTTL)
	requireResource(ctx, logg, "event idempotency manager", err)

	offersConsumer, err := realtime.NewConsumer(offersConsumerName, dispatcher, pubsubClient.OffersSubscription(), idemManager, logg)
	requireResource(ctx, logg, "offer events consumer", err)

	notificationsConsumer, err := realtime.NewConsumer(notifConsumerName, dispatcher, pubsubClient.NotificationSubscription(), idemManager, logg)
	requireResource(ctx, logg, "notification events consumer", err)

	router := routes.NewRouter(routes.RouterParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessionManager,
		Auth:          authService,
		Users:         usersService,
		Assets:        assetsService,
		Offers:        offersService,
		Campaigns:     campaignsService,
		Notifications: notificationsService,
		Stats:         statsService,
		Hub:           hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{Addr: addr, Handler: router}

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return offersConsumer.Run(groupCtx)
	})
	group.Go(func() error {
		return notificationsConsumer.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "api server shutting down gracefully")
}

// newAssetsService wires the assets service with geocoding when a Maps key is
// configured. Without one, assets persist with whatever coordinates the seller
// supplied.
func newAssetsService(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo assets.Repository, dbClient *db.Client, ob *outbox.Service, usersRepo users.Repository) (assets.Service, error) {
	if cfg.GoogleMaps.APIKey == "" {
		logg.Warn(ctx, "maps api key missing, geocoding disabled")
		return assets.NewService(repo, dbClient, ob, usersRepo, nil, logg)
	}
	geo, err := maps.NewClient(cfg.GoogleMaps.APIKey)
	if err != nil {
		return nil, err
	}
	return assets.NewService(repo, dbClient, ob, usersRepo, geo, logg)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
