package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime knob for the beacon binaries. All values come from
// environment variables (optionally loaded from a .env file by the caller).
type Config struct {
	// HTTP server
	HTTPAddr string

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Tracker simulator
	TrackerID       string
	TrackerName     string
	ReportInterval  time.Duration
	TrackerSpeedKmh float64
	RouteWaypoints  string

	// Ingest daemon
	PositionRetention time.Duration
	GeocodeInterval   time.Duration
	GoogleMapsAPIKey  string

	// Firebase auth
	FirebaseProjectID          string
	FirebaseServiceAccountPath string
}

// Load reads the configuration from the environment, applying defaults suitable
// for local development.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:                   getEnvOrDefault("HTTP_ADDR", ":9091"),
		KafkaBrokers:               strings.Split(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:                 getEnvOrDefault("KAFKA_TOPIC", "tracker.positions"),
		KafkaGroupID:               getEnvOrDefault("KAFKA_GROUP_ID", "beacon-ingestd"),
		TrackerID:                  getEnvOrDefault("TRACKER_ID", "tracker-1"),
		TrackerName:                getEnvOrDefault("TRACKER_NAME", "Delivery Van 1"),
		RouteWaypoints:             getEnvOrDefault("ROUTE_WAYPOINTS", "52.5200,13.4050;52.5163,13.3777;52.5096,13.3760;52.5074,13.3904"),
		GoogleMapsAPIKey:           os.Getenv("GOOGLE_MAPS_API_KEY"),
		FirebaseProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
	}

	var err error
	if cfg.ReportInterval, err = getEnvDuration("REPORT_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PositionRetention, err = getEnvDuration("POSITION_RETENTION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.GeocodeInterval, err = getEnvDuration("GEOCODE_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TrackerSpeedKmh, err = getEnvFloat("TRACKER_SPEED_KMH", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}
