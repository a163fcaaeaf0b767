package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.mapwave.beacon/internal/events"
	getlogomodels "io.mapwave.beacon/internal/models/get_logo"
	updatelogomodels "io.mapwave.beacon/internal/models/update_logo"
)

const logoCacheKey = "branding:logo"

// BrandingHandler serves the company logo endpoint pair. The logo is a single
// URL, last write wins; every update is broadcast to connected browsers.
type BrandingHandler struct {
	postgres *pgxpool.Pool
	redis    *redis.Client
	logger   *zap.SugaredLogger
}

func NewBrandingHandler(postgres *pgxpool.Pool, redisClient *redis.Client, logger *zap.SugaredLogger) *BrandingHandler {
	return &BrandingHandler{
		postgres: postgres,
		redis:    redisClient,
		logger:   logger,
	}
}

// GetLogo returns the currently active logo URL
func (h *BrandingHandler) GetLogo(c *gin.Context) {
	ctx := context.Background()

	// Try Redis cache first
	cached, err := h.redis.Get(ctx, logoCacheKey).Result()
	if err == nil {
		var response getlogomodels.GetLogoResponse
		if err := json.Unmarshal([]byte(cached), &response); err == nil {
			c.JSON(http.StatusOK, response)
			return
		}
	}

	var response getlogomodels.GetLogoResponse
	query := `SELECT logo_url, updated_at FROM branding WHERE id = 1`
	if err := h.postgres.QueryRow(ctx, query).Scan(&response.LogoURL, &response.UpdatedAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load logo"})
		return
	}

	// Cache for next time
	if responseJSON, err := json.Marshal(response); err == nil {
		h.redis.Set(ctx, logoCacheKey, responseJSON, 24*time.Hour)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateLogo replaces the active logo URL and broadcasts the change
func (h *BrandingHandler) UpdateLogo(c *gin.Context) {
	var req updatelogomodels.UpdateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	parsed, err := url.Parse(req.LogoURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Logo URL must be an absolute http(s) URL"})
		return
	}

	ctx := context.Background()
	now := time.Now().UTC()

	query := `UPDATE branding SET logo_url = $1, updated_at = $2 WHERE id = 1`
	if _, err := h.postgres.Exec(ctx, query, req.LogoURL, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update logo"})
		return
	}

	// Invalidate the cache before broadcasting so readers racing the event
	// never re-cache the old value past the update
	h.redis.Del(ctx, logoCacheKey)

	if err := events.Publish(ctx, h.redis, events.TypeLogoUpdated, events.LogoPayload{
		LogoURL:   req.LogoURL,
		UpdatedAt: now,
	}); err != nil {
		h.logger.Errorw("failed to publish logo event", "error", err)
	}

	h.logger.Infow("logo updated", "logo_url", req.LogoURL, "user_uid", c.GetString("uid"))

	c.JSON(http.StatusOK, updatelogomodels.UpdateLogoResponse{
		LogoURL:   req.LogoURL,
		UpdatedAt: now,
		Message:   "Logo updated successfully",
	})
}
