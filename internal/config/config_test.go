package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.mapwave.beacon/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9091", cfg.HTTPAddr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tracker.positions", cfg.KafkaTopic)
	assert.Equal(t, "beacon-ingestd", cfg.KafkaGroupID)
	assert.Equal(t, 5*time.Second, cfg.ReportInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.PositionRetention)
	assert.Equal(t, 30.0, cfg.TrackerSpeedKmh)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REPORT_INTERVAL", "500ms")
	t.Setenv("TRACKER_SPEED_KMH", "72.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.ReportInterval)
	assert.Equal(t, 72.5, cfg.TrackerSpeedKmh)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("REPORT_INTERVAL", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidFloat(t *testing.T) {
	t.Setenv("TRACKER_SPEED_KMH", "fast")

	_, err := config.Load()
	assert.Error(t, err)
}
