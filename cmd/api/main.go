package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/vuhoang/marketplace-backend/api/routes"
	"github.com/vuhoang/marketplace-backend/internal/cart"
	"github.com/vuhoang/marketplace-backend/internal/notifications"
	"github.com/vuhoang/marketplace-backend/internal/orderitems"
	"github.com/vuhoang/marketplace-backend/internal/orders"
	"github.com/vuhoang/marketplace-backend/internal/payments"
	"github.com/vuhoang/marketplace-backend/internal/products"
	"github.com/vuhoang/marketplace-backend/internal/sellers"
	"github.com/vuhoang/marketplace-backend/pkg/config"
	"github.com/vuhoang/marketplace-backend/pkg/db"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
	"github.com/vuhoang/marketplace-backend/pkg/migrate"
	"github.com/vuhoang/marketplace-backend/pkg/outbox"
	"github.com/vuhoang/marketplace-backend/pkg/redis"
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

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	sellersRepo := sellers.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())

	paymentsSvc, err := payments.NewService(
		paymentsRepo, ordersRepo, productsRepo, sellersRepo,
		dbClient, outboxSvc, redisClient,
		cfg.Gateway, cfg.Frontend, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		ordersRepo, productsRepo, cartRepo, orderitems.NewService(),
		dbClient, outboxSvc, paymentsSvc,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	readyChecks := map[string]func() error{
		"database": func() error { return dbClient.Ping(context.Background()) },
		"redis":    func() error { return redisClient.Ping(context.Background()) },
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, ordersSvc, paymentsSvc, notificationsSvc, readyChecks),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
