package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

const (
	retryBaseDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

// Handler processes one consumed position. Returning an error triggers a
// retry; the offset is not committed until the handler has succeeded.
type Handler func(ctx context.Context, pos trackermodels.Position) error

// Reader consumes the tracker positions topic inside a consumer group and
// hands each decoded fix to a Handler. Offsets are committed only after the
// handler has succeeded, so a valid fix survives crashes and dependency
// outages. Only messages that cannot be decoded are committed unprocessed.
type Reader struct {
	r          *kafka.Reader
	handler    Handler
	logger     *zap.SugaredLogger
	retryDelay time.Duration

	skipped int64
}

// NewReader creates a Reader joining the given consumer group.
func NewReader(brokers []string, topic, groupID string, handler Handler, logger *zap.SugaredLogger) *Reader {
	return &Reader{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0, // synchronous commits
		}),
		handler:    handler,
		logger:     logger,
		retryDelay: retryBaseDelay,
	}
}

// Run consumes until ctx is cancelled. Malformed or invalid messages are
// counted, logged and committed so a poison pill cannot wedge the partition;
// valid messages block with retries until the handler accepts them.
func (r *Reader) Run(ctx context.Context) error {
	defer r.r.Close()

	for {
		msg, err := r.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		pos, err := decodePosition(msg.Value)
		if err != nil {
			r.skipped++
			r.logger.Warnw("skipping bad position message",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"skipped_total", r.skipped,
			)
			if err := r.r.CommitMessages(ctx, msg); err != nil {
				r.logger.Errorw("failed to commit skipped message", "error", err)
			}
			continue
		}

		if err := r.process(ctx, pos); err != nil {
			// Only cancellation gets here; the offset stays uncommitted so
			// the fix is replayed on the next start
			return nil
		}

		if err := r.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Errorw("failed to commit offset", "error", err, "offset", msg.Offset)
		}
	}
}

// process runs the handler until it succeeds, backing off between attempts.
// It returns an error only when ctx is cancelled.
func (r *Reader) process(ctx context.Context, pos trackermodels.Position) error {
	delay := r.retryDelay
	for attempt := 1; ; attempt++ {
		err := r.handler(ctx, pos)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.logger.Warnw("position handler failed, will retry",
			"error", err,
			"tracker_id", pos.TrackerID,
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func decodePosition(value []byte) (trackermodels.Position, error) {
	var pos trackermodels.Position
	if err := json.Unmarshal(value, &pos); err != nil {
		return pos, err
	}
	if err := pos.Validate(); err != nil {
		return pos, err
	}
	return pos, nil
}
