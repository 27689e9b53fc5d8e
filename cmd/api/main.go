package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heetvora/chronomart-backend/api/routes"
	cartsvc "github.com/heetvora/chronomart-backend/internal/cart"
	checkoutsvc "github.com/heetvora/chronomart-backend/internal/checkout"
	couponssvc "github.com/heetvora/chronomart-backend/internal/coupons"
	dropssvc "github.com/heetvora/chronomart-backend/internal/drops"
	giftcardssvc "github.com/heetvora/chronomart-backend/internal/giftcards"
	orderssvc "github.com/heetvora/chronomart-backend/internal/orders"
	paymentssvc "github.com/heetvora/chronomart-backend/internal/payments"
	policiessvc "github.com/heetvora/chronomart-backend/internal/policies"
	productssvc "github.com/heetvora/chronomart-backend/internal/products"
	userssvc "github.com/heetvora/chronomart-backend/internal/users"
	wishlistsvc "github.com/heetvora/chronomart-backend/internal/wishlist"
	"github.com/heetvora/chronomart-backend/pkg/config"
	"github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/gateway"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/metrics"
	"github.com/heetvora/chronomart-backend/pkg/migrate"
	"github.com/heetvora/chronomart-backend/pkg/outbox"
	"github.com/heetvora/chronomart-backend/pkg/redis"
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

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	conn := dbClient.DB()

	usersRepo := userssvc.NewRepository(conn)
	productsRepo := productssvc.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	ordersRepo := orderssvc.NewRepository(conn)
	couponsRepo := couponssvc.NewRepository(conn)
	giftCardsRepo := giftcardssvc.NewRepository(conn)

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	usersService, err := userssvc.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	productsService, err := productssvc.NewService(productsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cartsvc.NewService(cartRepo, productsRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	couponsService, err := couponssvc.NewService(couponsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	giftCardsService, err := giftcardssvc.NewService(giftCardsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	ordersService, err := orderssvc.NewService(
		ordersRepo,
		productsService,
		productsRepo,
		giftCardsService,
		giftCardsRepo,
		outboxSvc,
		dbClient,
	)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutService, err := checkoutsvc.NewService(
		cartRepo,
		usersService,
		productsService,
		productsRepo,
		couponsService,
		couponsRepo,
		giftCardsService,
		giftCardsRepo,
		ordersRepo,
		outboxSvc,
		dbClient,
		checkoutMetrics,
	)
	if err != nil {
		return routes.Services{}, err
	}
	gatewayClient := gateway.NewClient(cfg.Gateway, logg)
	paymentsService, err := paymentssvc.NewService(
		ordersService,
		ordersRepo,
		usersRepo,
		gatewayClient,
		redisClient,
		cfg.Gateway,
		cfg.Idempotency,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}
	dropsService, err := dropssvc.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}
	policiesService, err := policiessvc.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}
	wishlistService, err := wishlistsvc.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Users:     usersService,
		Products:  productsService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Coupons:   couponsService,
		GiftCards: giftCardsService,
		Payments:  paymentsService,
		Drops:     dropsService,
		Policies:  policiesService,
		Wishlist:  wishlistService,
	}, nil
}
