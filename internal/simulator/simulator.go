package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

const earthRadiusMeters = 6371000.0

// Waypoint is one vertex of a simulated route.
type Waypoint struct {
	Latitude  float64
	Longitude float64
}

// Route is an ordered list of waypoints. The simulated tracker travels the
// segments in order and loops back to the start.
type Route []Waypoint

// ParseRoute parses the "lat,lng;lat,lng;..." form used in configuration.
func ParseRoute(s string) (Route, error) {
	parts := strings.Split(strings.TrimSpace(s), ";")
	if len(parts) < 2 {
		return nil, errors.New("route needs at least two waypoints")
	}

	route := make(Route, 0, len(parts))
	for _, part := range parts {
		coords := strings.Split(strings.TrimSpace(part), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("bad waypoint %q", part)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude in waypoint %q: %w", part, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude in waypoint %q: %w", part, err)
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("waypoint %q out of range", part)
		}
		route = append(route, Waypoint{Latitude: lat, Longitude: lng})
	}
	return route, nil
}

// PositionWriter receives the fixes the simulator produces.
type PositionWriter interface {
	WritePosition(ctx context.Context, pos trackermodels.Position) error
}

// Simulator moves a tracker along a route at constant speed and emits a fix on
// every tick.
type Simulator struct {
	trackerID   string
	trackerName string
	route       Route
	speedKmh    float64
	interval    time.Duration

	writer PositionWriter
	logger *zap.SugaredLogger

	// Progress along the route
	segment   int
	travelled float64 // meters into the current segment

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New creates a Simulator. interval controls the publish cadence; trackerName
// rides along on every fix so the consumer can label the tracker.
func New(trackerID, trackerName string, route Route, speedKmh float64, interval time.Duration,
	writer PositionWriter, logger *zap.SugaredLogger) *Simulator {
	return &Simulator{
		trackerID:   trackerID,
		trackerName: trackerName,
		route:       route,
		speedKmh:    speedKmh,
		interval:    interval,
		writer:      writer,
		logger:      logger,
	}
}

// Start begins emitting fixes. The first fix (the route origin) is published
// immediately so the map shows the tracker without waiting a full interval.
func (s *Simulator) Start() error {
	if s.running {
		return errors.New("simulator is already running")
	}
	if len(s.route) < 2 {
		return errors.New("simulator route needs at least two waypoints")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.publish(s.Position()); err != nil {
			s.logger.Errorw("failed to publish initial position", "error", err)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Advance(s.interval)
				if err := s.publish(s.Position()); err != nil {
					s.logger.Errorw("failed to publish position", "error", err)
				}
			case <-s.ctx.Done():
				s.logger.Info("simulator stopping")
				return
			}
		}
	}()

	s.logger.Infow("simulator started",
		"tracker_id", s.trackerID,
		"waypoints", len(s.route),
		"speed_kmh", s.speedKmh,
		"interval", s.interval,
	)
	return nil
}

// Stop halts the simulator and waits for the publish goroutine to exit.
func (s *Simulator) Stop() error {
	if !s.running {
		return errors.New("simulator is not running")
	}
	s.cancel()
	s.wg.Wait()
	s.running = false
	s.logger.Info("simulator stopped")
	return nil
}

// Advance moves the tracker along the route for the given duration.
func (s *Simulator) Advance(d time.Duration) {
	remaining := s.speedKmh / 3.6 * d.Seconds() // meters to cover
	for hops := 0; remaining > 0; hops++ {
		if hops > 2*len(s.route) && remaining >= s.routeLength() {
			// Degenerate route (all waypoints coincide), nowhere to go
			return
		}
		segLen := haversineMeters(s.route[s.segment], s.route[(s.segment+1)%len(s.route)])
		left := segLen - s.travelled
		if remaining < left {
			s.travelled += remaining
			return
		}
		remaining -= left
		s.segment = (s.segment + 1) % len(s.route)
		s.travelled = 0
	}
}

// Position returns the current interpolated fix.
func (s *Simulator) Position() trackermodels.Position {
	from := s.route[s.segment]
	to := s.route[(s.segment+1)%len(s.route)]

	frac := 0.0
	if segLen := haversineMeters(from, to); segLen > 0 {
		frac = s.travelled / segLen
	}

	return trackermodels.Position{
		TrackerID:   s.trackerID,
		TrackerName: s.trackerName,
		Latitude:    from.Latitude + (to.Latitude-from.Latitude)*frac,
		Longitude:   from.Longitude + (to.Longitude-from.Longitude)*frac,
		SpeedKmh:    s.speedKmh,
		Heading:     headingDegrees(from, to),
		RecordedAt:  time.Now().UTC(),
	}
}

func (s *Simulator) publish(pos trackermodels.Position) error {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	return s.writer.WritePosition(ctx, pos)
}

// routeLength is the total loop length in meters.
func (s *Simulator) routeLength() float64 {
	total := 0.0
	for i := range s.route {
		total += haversineMeters(s.route[i], s.route[(i+1)%len(s.route)])
	}
	return total
}

// haversineMeters is the great-circle distance between two waypoints.
func haversineMeters(a, b Waypoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// headingDegrees is the initial bearing from a to b, 0 = north, clockwise.
func headingDegrees(a, b Waypoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
