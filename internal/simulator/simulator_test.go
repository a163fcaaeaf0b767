package simulator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
	"io.mapwave.beacon/internal/simulator"
)

// captureWriter records every fix the simulator publishes.
type captureWriter struct {
	mu    sync.Mutex
	fixes []trackermodels.Position
}

func (c *captureWriter) WritePosition(_ context.Context, pos trackermodels.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixes = append(c.fixes, pos)
	return nil
}

func (c *captureWriter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fixes)
}

func TestParseRoute(t *testing.T) {
	route, err := simulator.ParseRoute("52.5200,13.4050; 52.5163,13.3777")
	require.NoError(t, err)
	require.Len(t, route, 2)
	assert.Equal(t, 52.52, route[0].Latitude)
	assert.Equal(t, 13.3777, route[1].Longitude)
}

func TestParseRoute_Invalid(t *testing.T) {
	cases := map[string]string{
		"single waypoint": "52.5,13.4",
		"missing value":   "52.5,13.4;52.6",
		"not a number":    "52.5,13.4;abc,13.5",
		"latitude range":  "52.5,13.4;95.0,13.5",
		"longitude range": "52.5,13.4;52.6,200.0",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := simulator.ParseRoute(input)
			assert.Error(t, err)
		})
	}
}

func TestSimulator_AdvanceMovesTowardNextWaypoint(t *testing.T) {
	route, err := simulator.ParseRoute("52.5200,13.4050;52.5200,13.5050")
	require.NoError(t, err)

	sim := simulator.New("tracker-1", "Delivery Van", route, 36, time.Second, &captureWriter{}, zap.NewNop().Sugar())

	start := sim.Position()
	assert.Equal(t, route[0].Latitude, start.Latitude)
	assert.Equal(t, route[0].Longitude, start.Longitude)

	// 36 km/h for 10s is 100m east; longitude must grow, latitude must hold
	sim.Advance(10 * time.Second)
	moved := sim.Position()
	assert.Greater(t, moved.Longitude, start.Longitude)
	assert.InDelta(t, start.Latitude, moved.Latitude, 1e-6)
	assert.Less(t, moved.Longitude, route[1].Longitude)

	require.NoError(t, moved.Validate())
	assert.Equal(t, "tracker-1", moved.TrackerID)
	assert.Equal(t, "Delivery Van", moved.TrackerName)
	assert.InDelta(t, 90, moved.Heading, 1.0) // due east
}

func TestSimulator_LoopsAtRouteEnd(t *testing.T) {
	route, err := simulator.ParseRoute("52.5200,13.4050;52.5210,13.4060")
	require.NoError(t, err)

	sim := simulator.New("tracker-1", "", route, 1000, time.Second, &captureWriter{}, zap.NewNop().Sugar())

	// Far further than the loop's total length; the position must stay inside
	// the route's bounding box
	sim.Advance(time.Hour)
	pos := sim.Position()
	assert.GreaterOrEqual(t, pos.Latitude, 52.5200)
	assert.LessOrEqual(t, pos.Latitude, 52.5210)
	assert.GreaterOrEqual(t, pos.Longitude, 13.4050)
	assert.LessOrEqual(t, pos.Longitude, 13.4060)
}

func TestSimulator_StartPublishesImmediately(t *testing.T) {
	route, err := simulator.ParseRoute("52.5200,13.4050;52.5210,13.4060")
	require.NoError(t, err)

	writer := &captureWriter{}
	sim := simulator.New("tracker-1", "Delivery Van", route, 30, 50*time.Millisecond, writer, zap.NewNop().Sugar())

	require.NoError(t, sim.Start())
	defer sim.Stop()

	assert.Eventually(t, func() bool {
		return writer.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSimulator_StartStopLifecycle(t *testing.T) {
	route, err := simulator.ParseRoute("52.5200,13.4050;52.5210,13.4060")
	require.NoError(t, err)

	sim := simulator.New("tracker-1", "", route, 30, time.Minute, &captureWriter{}, zap.NewNop().Sugar())

	require.NoError(t, sim.Start())

	// Starting twice must fail
	err = sim.Start()
	assert.Error(t, err)
	assert.Equal(t, "simulator is already running", err.Error())

	require.NoError(t, sim.Stop())

	// Stopping twice must fail
	err = sim.Stop()
	assert.Error(t, err)
	assert.Equal(t, "simulator is not running", err.Error())
}
