package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis pub/sub channels carrying event envelopes between processes. Every API
// instance subscribes to all of them and forwards envelopes to its WebSocket
// clients unchanged.
const (
	ChannelBranding  = "beacon:events:branding"
	ChannelStations  = "beacon:events:stations"
	ChannelLocations = "beacon:events:locations"
)

// Event types carried in the envelope. Browsers switch on these.
const (
	TypeLogoUpdated     = "logo.updated"
	TypeStationCreated  = "station.created"
	TypeStationDeleted  = "station.deleted"
	TypeLocationUpdated = "location.updated"
)

// Envelope is the wire format for every broadcast event. Payload stays raw so
// the API tier can forward events it did not produce without re-decoding them.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// LogoPayload is the payload of a logo.updated event. UpdatedAt lets clients
// discard a broadcast older than the logo they already display.
type LogoPayload struct {
	LogoURL   string    `json:"logo_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Wrap marshals payload into an Envelope and returns the envelope's JSON bytes.
func Wrap(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	env := Envelope{
		Type:      eventType,
		Payload:   raw,
		EmittedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", eventType, err)
	}
	return data, nil
}

// Publish wraps payload in an Envelope and publishes it on the channel for
// its event type.
func Publish(ctx context.Context, rdb *redis.Client, eventType string, payload interface{}) error {
	channel := ChannelFor(eventType)
	if channel == "" {
		return fmt.Errorf("no channel for event type %q", eventType)
	}
	data, err := Wrap(eventType, payload)
	if err != nil {
		return err
	}
	if err := rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// ChannelFor maps an event type to the Redis channel it is published on, or
// "" for an unknown type.
func ChannelFor(eventType string) string {
	switch eventType {
	case TypeLogoUpdated:
		return ChannelBranding
	case TypeStationCreated, TypeStationDeleted:
		return ChannelStations
	case TypeLocationUpdated:
		return ChannelLocations
	default:
		return ""
	}
}

// Channels lists every channel the API tier subscribes to.
func Channels() []string {
	return []string{ChannelBranding, ChannelStations, ChannelLocations}
}
