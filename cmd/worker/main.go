package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KevinTan25/flightsApp/config"
	"github.com/KevinTan25/flightsApp/internal/cache"
	"github.com/KevinTan25/flightsApp/internal/email"
	"github.com/KevinTan25/flightsApp/internal/kafka"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/KevinTan25/flightsApp/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	catalogTTL := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, catalogTTL)

	airportRepo := repository.NewAirportRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	catalogSvc := catalog.NewCatalogService(flightRepo, airportRepo, redisCache)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.CartEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	warmInterval := time.Duration(cfg.Catalog.WarmIntervalMinutes) * time.Minute
	if warmInterval <= 0 {
		warmInterval = 15 * time.Minute
	}
	warmTicker := time.NewTicker(warmInterval)
	defer warmTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-warmTicker.C:
			// Drop and repopulate the catalog cache so admin edits converge
			// even when no request traffic invalidates it.
			if err := redisCache.InvalidateCatalog(ctx); err != nil {
				log.Printf("invalidate catalog cache error: %v", err)
				continue
			}
			flights, err := catalogSvc.ListFlights(ctx, repository.FlightFilter{})
			if err != nil {
				log.Printf("warm flights cache error: %v", err)
				continue
			}
			airports, err := catalogSvc.ListAirports(ctx)
			if err != nil {
				log.Printf("warm airports cache error: %v", err)
				continue
			}
			log.Printf("warmed catalog cache: %d flights, %d airports", len(flights), len(airports))
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
