package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/routes"
	addresssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	cartsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/cart"
	checkoutsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/checkout"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/coupons"
	exchangesvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/exchanges"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	orderssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/products"
	returnsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/returns"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/config"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/env"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/metrics"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/migrate"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gormDB := dbClient.DB()
	cartRepo := cartsvc.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	addressRepo := addresssvc.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	pendingRepo := checkoutsvc.NewPendingRepository(gormDB)
	ordersRepo := orderssvc.NewRepository(gormDB)

	gateway, err := payments.NewHMACGateway(cfg.Gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, dbClient, productsRepo, inventory.NewReader(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(
		dbClient, cartRepo, productsRepo, addressRepo, paymentsRepo, pendingRepo,
		ordersRepo, coupons.NewDBValidator(gormDB), gateway, checkoutMetrics,
		cfg.Checkout.PendingGatewayOrderTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orderssvc.NewService(ordersRepo, dbClient, paymentsRepo, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	returnsService, err := returnsvc.NewService(returnsvc.NewRepository(gormDB), ordersRepo, paymentsRepo, dbClient, cfg.Returns.Window())
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}
	exchangesService, err := exchangesvc.NewService(exchangesvc.NewRepository(gormDB), ordersRepo, dbClient, cfg.Returns.Window())
	if err != nil {
		logg.Error(context.Background(), "failed to create exchanges service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			RateStore:   redisClient,
			Registry:    registry,
			Cart:        cartService,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Returns:     returnsService,
			Exchanges:   exchangesService,
			Addresses:   addressRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
