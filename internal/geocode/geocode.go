package geocode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Resolver turns coordinates into a human-readable address via the Google Maps
// Geocoding API. Lookups are throttled per tracker so a 5-second fix cadence
// does not turn into a 5-second billing cadence.
type Resolver struct {
	client   *maps.Client
	interval time.Duration
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	lastDone map[string]time.Time
}

// NewResolver creates a Resolver. interval is the minimum time between lookups
// for the same tracker.
func NewResolver(apiKey string, interval time.Duration, logger *zap.SugaredLogger) (*Resolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Resolver{
		client:   client,
		interval: interval,
		logger:   logger,
		lastDone: make(map[string]time.Time),
	}, nil
}

// Resolve returns the formatted address for the coordinates, or "" when the
// tracker was geocoded too recently or no result came back.
func (r *Resolver) Resolve(ctx context.Context, trackerID string, lat, lng float64) string {
	r.mu.Lock()
	if last, ok := r.lastDone[trackerID]; ok && time.Since(last) < r.interval {
		r.mu.Unlock()
		return ""
	}
	r.lastDone[trackerID] = time.Now()
	r.mu.Unlock()

	results, err := r.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		r.logger.Warnw("reverse geocode failed", "tracker_id", trackerID, "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}
	return results[0].FormattedAddress
}
