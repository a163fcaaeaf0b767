package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	gethistorymodels "io.mapwave.beacon/internal/models/get_history"
	listtrackersmodels "io.mapwave.beacon/internal/models/list_trackers"
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// TrackersHandler serves queries about the moving points on the map.
type TrackersHandler struct {
	postgres *pgxpool.Pool
	redis    *redis.Client
	logger   *zap.SugaredLogger
}

func NewTrackersHandler(postgres *pgxpool.Pool, redisClient *redis.Client, logger *zap.SugaredLogger) *TrackersHandler {
	return &TrackersHandler{
		postgres: postgres,
		redis:    redisClient,
		logger:   logger,
	}
}

// ListTrackers returns all known trackers with their latest position
func (h *TrackersHandler) ListTrackers(c *gin.Context) {
	ctx := context.Background()

	query := `SELECT id, COALESCE(name, ''), last_seen FROM trackers ORDER BY last_seen DESC`
	rows, err := h.postgres.Query(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trackers"})
		return
	}
	defer rows.Close()

	trackers := []trackermodels.Tracker{}
	for rows.Next() {
		var t trackermodels.Tracker
		if err := rows.Scan(&t.ID, &t.Name, &t.LastSeen); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read tracker"})
			return
		}
		trackers = append(trackers, t)
	}

	for i := range trackers {
		trackers[i].Latest = h.latestPosition(ctx, trackers[i].ID)
	}

	c.JSON(http.StatusOK, listtrackersmodels.ListTrackersResponse{Trackers: trackers})
}

// GetHistory returns the stored position trail of one tracker
func (h *TrackersHandler) GetHistory(c *gin.Context) {
	var req gethistorymodels.GetHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	since := time.Time{}
	if req.Since != nil {
		since = *req.Since
	}

	ctx := context.Background()

	query := `
		SELECT tracker_id, latitude, longitude, COALESCE(speed_kmh, 0), COALESCE(heading, 0), COALESCE(address, ''), recorded_at
		FROM tracker_positions
		WHERE tracker_id = $1 AND recorded_at > $2
		ORDER BY recorded_at DESC
		LIMIT $3
	`
	rows, err := h.postgres.Query(ctx, query, req.TrackerID, since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	defer rows.Close()

	positions := []trackermodels.Position{}
	for rows.Next() {
		var p trackermodels.Position
		if err := rows.Scan(&p.TrackerID, &p.Latitude, &p.Longitude, &p.SpeedKmh, &p.Heading, &p.Address, &p.RecordedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read position"})
			return
		}
		positions = append(positions, p)
	}

	c.JSON(http.StatusOK, gethistorymodels.GetHistoryResponse{
		TrackerID: req.TrackerID,
		Positions: positions,
	})
}

// latestPosition reads the latest fix from the Redis cache, falling back to
// Postgres (and re-caching) on a miss.
func (h *TrackersHandler) latestPosition(ctx context.Context, trackerID string) *trackermodels.Position {
	key := fmt.Sprintf("tracker:latest:%s", trackerID)

	cached, err := h.redis.Get(ctx, key).Result()
	if err == nil {
		var pos trackermodels.Position
		if err := json.Unmarshal([]byte(cached), &pos); err == nil {
			return &pos
		}
	}

	var pos trackermodels.Position
	query := `
		SELECT tracker_id, latitude, longitude, COALESCE(speed_kmh, 0), COALESCE(heading, 0), COALESCE(address, ''), recorded_at
		FROM tracker_positions
		WHERE tracker_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	err = h.postgres.QueryRow(ctx, query, trackerID).
		Scan(&pos.TrackerID, &pos.Latitude, &pos.Longitude, &pos.SpeedKmh, &pos.Heading, &pos.Address, &pos.RecordedAt)
	if err != nil {
		if err != pgx.ErrNoRows {
			h.logger.Errorw("failed to load latest position", "error", err, "tracker_id", trackerID)
		}
		return nil
	}

	// Cache it for next time
	if posJSON, err := json.Marshal(pos); err == nil {
		h.redis.Set(ctx, key, posJSON, 24*time.Hour)
	}

	return &pos
}
