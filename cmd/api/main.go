package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltline/voltline-backend/api/routes"
	internalauth "github.com/voltline/voltline-backend/internal/auth"
	"github.com/voltline/voltline-backend/internal/checkout"
	"github.com/voltline/voltline-backend/internal/inventory"
	"github.com/voltline/voltline-backend/internal/notifications"
	"github.com/voltline/voltline-backend/internal/orders"
	"github.com/voltline/voltline-backend/internal/payments"
	"github.com/voltline/voltline-backend/internal/returns"
	"github.com/voltline/voltline-backend/internal/stores"
	"github.com/voltline/voltline-backend/internal/users"
	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/db"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/metrics"
	"github.com/voltline/voltline-backend/pkg/migrate"
	"github.com/voltline/voltline-backend/pkg/pubsub"
	"github.com/voltline/voltline-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	// The admin alert channel is advisory. When the project is not
	// configured the API runs without it.
	var adminAlerts payments.AdminNotifier
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		alerts, err := notifications.NewAdminAlerts(pubsubClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create admin alerts publisher", err)
			os.Exit(1)
		}
		adminAlerts = alerts
	} else {
		logg.Warn(context.Background(), "pubsub project not configured, admin alerts disabled")
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	storesRepo := stores.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)
	checkoutRepo := checkout.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	storesService, err := stores.NewService(storesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stores service", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(internalauth.ServiceParams{
		UserRepo:     usersRepo,
		StoreFinder:  storesRepo,
		StoreService: storesService,
		JWTConfig:    cfg.JWT,
		Password:     cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	recorder, err := notifications.NewRecorder(notificationsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification recorder", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, checkoutRepo, inventoryRepo, ordersRepo, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(ordersRepo, adminAlerts, logg, cfg.Notify.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(ordersRepo, dbClient, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(metricsRegistry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metricsRegistry,
			httpMetrics,
			authService,
			checkoutService,
			ordersService,
			paymentsService,
			returnsService,
			notificationsService,
			storesService,
			inventoryRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
