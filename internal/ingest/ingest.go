package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.mapwave.beacon/internal/events"
	"io.mapwave.beacon/internal/geocode"
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

const latestCacheTTL = 24 * time.Hour

// Service applies one consumed position fix: persist to Postgres, refresh the
// latest-position cache, and publish the broadcast event. It is the Handler
// given to the stream Reader.
type Service struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	resolver *geocode.Resolver // nil when no Maps API key is configured
	logger   *zap.SugaredLogger
}

// NewService wires an ingest Service. resolver may be nil.
func NewService(db *pgxpool.Pool, redisClient *redis.Client, resolver *geocode.Resolver, logger *zap.SugaredLogger) *Service {
	return &Service{
		db:       db,
		redis:    redisClient,
		resolver: resolver,
		logger:   logger,
	}
}

// HandlePosition processes a single fix. Persistence failures are returned (the
// reader retries); cache and broadcast failures are logged only, the fix is
// already durable by then.
func (s *Service) HandlePosition(ctx context.Context, pos trackermodels.Position) error {
	if s.resolver != nil && pos.Address == "" {
		pos.Address = s.resolver.Resolve(ctx, pos.TrackerID, pos.Latitude, pos.Longitude)
	}

	// Upsert the tracker row, moving last_seen forward only and keeping the
	// last non-empty name a fix carried
	trackerQuery := `
		INSERT INTO trackers (id, name, last_seen)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT (id)
		DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), trackers.name),
			last_seen = GREATEST(trackers.last_seen, EXCLUDED.last_seen)
	`
	if _, err := s.db.Exec(ctx, trackerQuery, pos.TrackerID, pos.TrackerName, pos.RecordedAt); err != nil {
		return fmt.Errorf("failed to upsert tracker: %w", err)
	}

	positionQuery := `
		INSERT INTO tracker_positions (tracker_id, latitude, longitude, speed_kmh, heading, address, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`
	if _, err := s.db.Exec(ctx, positionQuery,
		pos.TrackerID,
		pos.Latitude,
		pos.Longitude,
		pos.SpeedKmh,
		pos.Heading,
		pos.Address,
		pos.RecordedAt,
	); err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	s.updateLatestCache(ctx, pos)

	if err := events.Publish(ctx, s.redis, events.TypeLocationUpdated, pos); err != nil {
		s.logger.Errorw("failed to publish location event", "error", err, "tracker_id", pos.TrackerID)
	}

	return nil
}

// updateLatestCache replaces the cached latest fix only when the new fix is
// strictly newer, so an out-of-order delivery cannot move a marker backwards.
func (s *Service) updateLatestCache(ctx context.Context, pos trackermodels.Position) {
	key := fmt.Sprintf("tracker:latest:%s", pos.TrackerID)

	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		var existing trackermodels.Position
		if err := json.Unmarshal([]byte(cached), &existing); err == nil &&
			!pos.RecordedAt.After(existing.RecordedAt) {
			return
		}
	}

	posJSON, err := json.Marshal(pos)
	if err != nil {
		s.logger.Errorw("failed to marshal position for cache", "error", err)
		return
	}
	if err := s.redis.Set(ctx, key, posJSON, latestCacheTTL).Err(); err != nil {
		s.logger.Errorw("failed to cache latest position", "error", err, "tracker_id", pos.TrackerID)
	}
}
