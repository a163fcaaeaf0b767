package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.mapwave.beacon/internal/events"
	createstationmodels "io.mapwave.beacon/internal/models/create_station"
	deletestationmodels "io.mapwave.beacon/internal/models/delete_station"
	liststationsmodels "io.mapwave.beacon/internal/models/list_stations"
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

const stationsCacheKey = "stations:all"

// StationsHandler manages the fixed points shown on the map panel.
type StationsHandler struct {
	postgres *pgxpool.Pool
	redis    *redis.Client
	logger   *zap.SugaredLogger
}

func NewStationsHandler(postgres *pgxpool.Pool, redisClient *redis.Client, logger *zap.SugaredLogger) *StationsHandler {
	return &StationsHandler{
		postgres: postgres,
		redis:    redisClient,
		logger:   logger,
	}
}

// CreateStation adds a fixed map point and broadcasts it to open map panels
func (h *StationsHandler) CreateStation(c *gin.Context) {
	var req createstationmodels.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of range"})
		return
	}

	ctx := context.Background()

	station := trackermodels.Station{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	query := `
		INSERT INTO stations (name, latitude, longitude)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := h.postgres.QueryRow(ctx, query, req.Name, req.Latitude, req.Longitude).
		Scan(&station.ID, &station.CreatedAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create station"})
		return
	}

	h.redis.Del(ctx, stationsCacheKey)
	h.publishStationEvent(ctx, events.TypeStationCreated, station)

	c.JSON(http.StatusOK, createstationmodels.CreateStationResponse{
		Station: station,
		Message: "Station created successfully",
	})
}

// ListStations returns all fixed map points
func (h *StationsHandler) ListStations(c *gin.Context) {
	ctx := context.Background()

	// Try Redis cache first
	cached, err := h.redis.Get(ctx, stationsCacheKey).Result()
	if err == nil {
		var stations []trackermodels.Station
		if err := json.Unmarshal([]byte(cached), &stations); err == nil {
			c.JSON(http.StatusOK, liststationsmodels.ListStationsResponse{Stations: stations})
			return
		}
	}

	query := `SELECT id, name, latitude, longitude, created_at FROM stations ORDER BY created_at`
	rows, err := h.postgres.Query(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stations"})
		return
	}
	defer rows.Close()

	stations := []trackermodels.Station{}
	for rows.Next() {
		var s trackermodels.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read station"})
			return
		}
		stations = append(stations, s)
	}

	// Cache for next time
	if stationsJSON, err := json.Marshal(stations); err == nil {
		h.redis.Set(ctx, stationsCacheKey, stationsJSON, time.Hour)
	}

	c.JSON(http.StatusOK, liststationsmodels.ListStationsResponse{Stations: stations})
}

// DeleteStation removes a fixed map point
func (h *StationsHandler) DeleteStation(c *gin.Context) {
	var req deletestationmodels.DeleteStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()

	var station trackermodels.Station
	query := `
		DELETE FROM stations WHERE id = $1
		RETURNING id, name, latitude, longitude, created_at
	`
	err := h.postgres.QueryRow(ctx, query, req.StationID).
		Scan(&station.ID, &station.Name, &station.Latitude, &station.Longitude, &station.CreatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
		return
	}

	h.redis.Del(ctx, stationsCacheKey)
	h.publishStationEvent(ctx, events.TypeStationDeleted, station)

	c.JSON(http.StatusOK, deletestationmodels.DeleteStationResponse{
		StationID: station.ID,
		Message:   "Station deleted successfully",
	})
}

func (h *StationsHandler) publishStationEvent(ctx context.Context, eventType string, station trackermodels.Station) {
	if err := events.Publish(ctx, h.redis, eventType, station); err != nil {
		h.logger.Errorw("failed to publish station event", "error", err, "type", eventType)
	}
}
