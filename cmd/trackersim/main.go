package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"io.mapwave.beacon/internal/config"
	"io.mapwave.beacon/internal/logger"
	"io.mapwave.beacon/internal/simulator"
	"io.mapwave.beacon/internal/stream"
)

// trackersim plays the part of a GPS device: it moves a tracker along a
// configured route and publishes a fix to Kafka on every report interval.
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

	route, err := simulator.ParseRoute(cfg.RouteWaypoints)
	if err != nil {
		zlog.Fatalw("Invalid ROUTE_WAYPOINTS", "error", err)
	}

	writer := stream.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, zlog)
	defer writer.Close()

	sim := simulator.New(cfg.TrackerID, cfg.TrackerName, route, cfg.TrackerSpeedKmh, cfg.ReportInterval, writer, zlog)
	if err := sim.Start(); err != nil {
		zlog.Fatalw("Failed to start simulator", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down simulator...")
	if err := sim.Stop(); err != nil {
		zlog.Errorw("Simulator stop failed", "error", err)
	}
}
