package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

func validPosition() trackermodels.Position {
	return trackermodels.Position{
		TrackerID:  "tracker-1",
		Latitude:   52.52,
		Longitude:  13.405,
		SpeedKmh:   30,
		Heading:    90,
		RecordedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
}

func TestDecodePosition(t *testing.T) {
	want := validPosition()
	value, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := decodePosition(value)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodePosition_Malformed(t *testing.T) {
	_, err := decodePosition([]byte(`{"tracker_id": `))
	assert.Error(t, err)
}

func TestDecodePosition_RejectsInvalidFix(t *testing.T) {
	cases := map[string]func(*trackermodels.Position){
		"missing tracker id":  func(p *trackermodels.Position) { p.TrackerID = "" },
		"latitude too big":    func(p *trackermodels.Position) { p.Latitude = 91 },
		"longitude too small": func(p *trackermodels.Position) { p.Longitude = -181 },
		"zero timestamp":      func(p *trackermodels.Position) { p.RecordedAt = time.Time{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			pos := validPosition()
			mutate(&pos)
			value, err := json.Marshal(pos)
			require.NoError(t, err)

			_, err = decodePosition(value)
			assert.Error(t, err)
		})
	}
}

func TestProcess_RetriesUntilHandlerSucceeds(t *testing.T) {
	attempts := 0
	r := &Reader{
		handler: func(ctx context.Context, pos trackermodels.Position) error {
			attempts++
			if attempts < 3 {
				return errors.New("database unavailable")
			}
			return nil
		},
		logger:     zap.NewNop().Sugar(),
		retryDelay: time.Millisecond,
	}

	// A valid fix must never be given up on; the handler is retried through
	// the outage instead
	err := r.process(context.Background(), validPosition())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestProcess_ReturnsOnlyOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Reader{
		handler: func(ctx context.Context, pos trackermodels.Position) error {
			return errors.New("database unavailable")
		},
		logger:     zap.NewNop().Sugar(),
		retryDelay: time.Millisecond,
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.process(ctx, validPosition())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriter_RefusesInvalidPosition(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "tracker.positions", zap.NewNop().Sugar())
	defer w.Close()

	pos := validPosition()
	pos.TrackerID = ""

	// Must fail validation before any broker I/O happens
	err := w.WritePosition(context.Background(), pos)
	assert.Error(t, err)
}
