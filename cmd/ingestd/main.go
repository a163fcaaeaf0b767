package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"io.mapwave.beacon/internal/config"
	"io.mapwave.beacon/internal/db"
	"io.mapwave.beacon/internal/geocode"
	"io.mapwave.beacon/internal/ingest"
	"io.mapwave.beacon/internal/jobs"
	"io.mapwave.beacon/internal/logger"
	"io.mapwave.beacon/internal/stream"
)

// ingestd consumes the tracker positions topic, persists every fix and fans it
// out to the API tier through Redis pub/sub. It also owns the maintenance cron
// jobs so they run exactly once regardless of how many API instances exist.
func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		zlog.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		zlog.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// Reverse geocoding is optional; without an API key positions are stored bare
	var resolver *geocode.Resolver
	if cfg.GoogleMapsAPIKey != "" {
		resolver, err = geocode.NewResolver(cfg.GoogleMapsAPIKey, cfg.GeocodeInterval, zlog)
		if err != nil {
			zlog.Fatalw("Failed to initialize geocoder", "error", err)
		}
		zlog.Info("Reverse geocoding enabled")
	}

	service := ingest.NewService(postgresDB, redisClient, resolver, zlog)

	jobManager, err := jobs.NewManager(postgresDB, redisClient, cfg.PositionRetention, zlog)
	if err != nil {
		zlog.Fatalw("Failed to set up maintenance jobs", "error", err)
	}
	jobManager.Start()
	defer jobManager.Stop()

	reader := stream.NewReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, service.HandlePosition, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the consumer on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zlog.Info("Shutting down ingest daemon...")
		cancel()
	}()

	zlog.Infow("Ingest daemon consuming",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
		"group", cfg.KafkaGroupID,
	)

	if err := reader.Run(ctx); err != nil {
		zlog.Fatalw("Consumer stopped with error", "error", err)
	}

	zlog.Info("Ingest daemon exited")
}
