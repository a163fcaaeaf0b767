package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.mapwave.beacon/internal/events"
	getlogomodels "io.mapwave.beacon/internal/models/get_logo"
)

func TestWrap_RoundTrip(t *testing.T) {
	payload := events.LogoPayload{
		LogoURL:   "https://cdn.example.com/logo.png",
		UpdatedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	data, err := events.Wrap(events.TypeLogoUpdated, payload)
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, events.TypeLogoUpdated, env.Type)
	assert.False(t, env.EmittedAt.IsZero())

	var got events.LogoPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, events.ChannelBranding, events.ChannelFor(events.TypeLogoUpdated))
	assert.Equal(t, events.ChannelStations, events.ChannelFor(events.TypeStationCreated))
	assert.Equal(t, events.ChannelStations, events.ChannelFor(events.TypeStationDeleted))
	assert.Equal(t, events.ChannelLocations, events.ChannelFor(events.TypeLocationUpdated))
	assert.Equal(t, "", events.ChannelFor("logo.deleted"))
}

func TestPublish_UnknownTypeRejected(t *testing.T) {
	// Must fail before any Redis I/O happens
	err := events.Publish(context.Background(), nil, "logo.deleted", events.LogoPayload{})
	assert.Error(t, err)
}

func TestLogoPayload_MatchesHTTPShape(t *testing.T) {
	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	respJSON, err := json.Marshal(getlogomodels.GetLogoResponse{LogoURL: "https://cdn.example.com/logo.png", UpdatedAt: at})
	require.NoError(t, err)
	payloadJSON, err := json.Marshal(events.LogoPayload{LogoURL: "https://cdn.example.com/logo.png", UpdatedAt: at})
	require.NoError(t, err)

	// A browser parses one shape whether the logo arrives by request or by
	// broadcast
	assert.JSONEq(t, string(respJSON), string(payloadJSON))
}

func TestChannels_CoverEveryEventType(t *testing.T) {
	channels := events.Channels()
	for _, eventType := range []string{
		events.TypeLogoUpdated,
		events.TypeStationCreated,
		events.TypeStationDeleted,
		events.TypeLocationUpdated,
	} {
		assert.Contains(t, channels, events.ChannelFor(eventType))
	}
}
