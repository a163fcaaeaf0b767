package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

// Writer publishes position fixes onto the tracker positions topic. Messages
// are keyed by tracker ID so every fix of one tracker lands on the same
// partition and per-tracker ordering survives consumption.
type Writer struct {
	w      *kafka.Writer
	logger *zap.SugaredLogger
}

// NewWriter creates a Writer for the given brokers and topic.
func NewWriter(brokers []string, topic string, logger *zap.SugaredLogger) *Writer {
	return &Writer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
		logger: logger,
	}
}

// WritePosition publishes a single fix.
func (w *Writer) WritePosition(ctx context.Context, pos trackermodels.Position) error {
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("refusing to publish invalid position: %w", err)
	}

	value, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(pos.TrackerID),
		Value: value,
		Time:  pos.RecordedAt,
	}

	if err := w.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write position to kafka: %w", err)
	}

	w.logger.Debugw("position published",
		"tracker_id", pos.TrackerID,
		"latitude", pos.Latitude,
		"longitude", pos.Longitude,
	)
	return nil
}

// Close flushes pending messages and releases the underlying writer.
func (w *Writer) Close() error {
	return w.w.Close()
}
