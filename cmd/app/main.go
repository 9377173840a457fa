package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KevinTan25/flightsApp/config"
	"github.com/KevinTan25/flightsApp/internal/bootstrap"
	"github.com/KevinTan25/flightsApp/internal/cache"
	"github.com/KevinTan25/flightsApp/internal/gateway"
	"github.com/KevinTan25/flightsApp/internal/kafka"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/KevinTan25/flightsApp/internal/service/cart"
	"github.com/KevinTan25/flightsApp/internal/service/catalog"
	"github.com/KevinTan25/flightsApp/internal/service/checkout"
	"github.com/KevinTan25/flightsApp/internal/service/importer"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	catalogTTL := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, catalogTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	airportRepo := repository.NewAirportRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	cartRepo := repository.NewCartRepository(pool)

	quoter := gateway.NewClient(cfg.Gateway)

	catalogSvc := catalog.NewCatalogService(flightRepo, airportRepo, redisCache)
	cartSvc := cart.NewCartService(
		cartRepo,
		flightRepo,
		producer,
		cfg.Kafka.CartEventsTopic,
		cart.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	checkoutSvc := checkout.NewCheckoutService(cartRepo, flightRepo, airportRepo, quoter, cfg.Gateway.Currency)
	importerSvc := importer.NewImporterService(airportRepo, flightRepo, quoter, redisCache, cfg.Gateway.Currency)

	if err := bootstrap.Run(ctx, cfg, catalogSvc, importerSvc, cartSvc, checkoutSvc); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
