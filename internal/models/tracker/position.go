package models

import (
	"errors"
	"time"
)

// Position is a single GPS fix for a tracker. It is the value written to the
// Kafka topic, the row persisted to Postgres, and the payload broadcast to
// WebSocket clients, so the JSON shape is shared by all three.
type Position struct {
	TrackerID   string    `json:"tracker_id"`
	TrackerName string    `json:"tracker_name,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SpeedKmh    float64   `json:"speed,omitempty"`
	Heading     float64   `json:"heading,omitempty"`
	Address     string    `json:"address,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Validate reports whether the fix is usable: a tracker ID, coordinates within
// range and a timestamp are required.
func (p Position) Validate() error {
	if p.TrackerID == "" {
		return errors.New("position has no tracker id")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return errors.New("latitude out of range")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errors.New("longitude out of range")
	}
	if p.RecordedAt.IsZero() {
		return errors.New("position has no recorded_at timestamp")
	}
	return nil
}

// Tracker is a moving point shown on the map, together with its most recent fix.
type Tracker struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	LastSeen time.Time `json:"last_seen"`
	Latest   *Position `json:"latest,omitempty"`
}
