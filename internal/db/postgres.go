package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitPostgres initializes and returns a PostgreSQL connection pool
func InitPostgres() (*pgxpool.Pool, error) {
	// Get database URL from environment variable or use default
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Default local development configuration
		host := getEnvOrDefault("POSTGRES_HOST", "localhost")
		port := getEnvOrDefault("POSTGRES_PORT", "5432")
		user := getEnvOrDefault("POSTGRES_USER", "beacon")
		password := getEnvOrDefault("POSTGRES_PASSWORD", "")
		dbname := getEnvOrDefault("POSTGRES_DB", "beacon")
		sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	// Configure connection pool
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	// Create connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// createTables creates all required tables if they don't exist
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// Branding table - a single row holding the active logo URL; last write wins
	brandingTable := `
		CREATE TABLE IF NOT EXISTS branding (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			logo_url TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Stations table - fixed points shown on the map
	stationsTable := `
		CREATE TABLE IF NOT EXISTS stations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			latitude DECIMAL(10, 8) NOT NULL,
			longitude DECIMAL(11, 8) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Trackers table - moving points; rows are upserted by the ingest daemon
	trackersTable := `
		CREATE TABLE IF NOT EXISTS trackers (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255),
			last_seen TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Tracker positions table - the position history consumed from Kafka
	positionsTable := `
		CREATE TABLE IF NOT EXISTS tracker_positions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tracker_id VARCHAR(255) NOT NULL REFERENCES trackers(id) ON DELETE CASCADE,
			latitude DECIMAL(10, 8) NOT NULL,
			longitude DECIMAL(11, 8) NOT NULL,
			speed_kmh DECIMAL(6, 2),
			heading DECIMAL(5, 2),
			address TEXT,
			recorded_at TIMESTAMP WITH TIME ZONE NOT NULL,
			received_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Daily stats table - per-tracker fix counts written by the rollup job
	dailyStatsTable := `
		CREATE TABLE IF NOT EXISTS tracker_daily_stats (
			tracker_id VARCHAR(255) NOT NULL REFERENCES trackers(id) ON DELETE CASCADE,
			day DATE NOT NULL,
			fix_count BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (tracker_id, day)
		);
	`

	// Create indexes for better performance
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_stations_coords ON stations(latitude, longitude);`,
		`CREATE INDEX IF NOT EXISTS idx_positions_tracker_id ON tracker_positions(tracker_id);`,
		`CREATE INDEX IF NOT EXISTS idx_positions_recorded_at ON tracker_positions(recorded_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_positions_tracker_recorded ON tracker_positions(tracker_id, recorded_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_trackers_last_seen ON trackers(last_seen DESC);`,
	}

	// Execute table creation statements
	tables := []string{brandingTable, stationsTable, trackersTable, positionsTable, dailyStatsTable}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Seed the branding row so reads and updates always target id = 1
	if _, err := pool.Exec(ctx, `INSERT INTO branding (id) VALUES (1) ON CONFLICT (id) DO NOTHING;`); err != nil {
		return fmt.Errorf("failed to seed branding row: %w", err)
	}

	// Execute index creation statements
	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
