package hub

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.mapwave.beacon/internal/events"
)

const maxResubscribeBackoff = 30 * time.Second

// RunBridge subscribes to the beacon event channels on Redis and forwards every
// message to the hub. Envelopes published by other processes (or other API
// instances) reach this instance's WebSocket clients through here. The
// subscription is re-established with backoff if it dies; RunBridge returns
// when ctx is cancelled.
func RunBridge(ctx context.Context, rdb *redis.Client, h *Hub, logger *zap.SugaredLogger) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := rdb.Subscribe(ctx, events.Channels()...)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Errorw("event channel subscribe failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > maxResubscribeBackoff {
				backoff = maxResubscribeBackoff
			}
			continue
		}

		backoff = time.Second
		logger.Infow("subscribed to event channels", "channels", events.Channels())

		ch := pubsub.Channel()
	recv:
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				h.Broadcast([]byte(msg.Payload))
			case <-ctx.Done():
				pubsub.Close()
				return
			}
		}

		pubsub.Close()
		logger.Warn("event channel subscription lost, resubscribing")
	}
}
