package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newTestClient(4)
	b := newTestClient(4)
	h.register <- a
	h.register <- b

	h.Broadcast([]byte(`{"type":"logo.updated"}`))

	assert.Equal(t, `{"type":"logo.updated"}`, string(receive(t, a)))
	assert.Equal(t, `{"type":"logo.updated"}`, string(receive(t, b)))
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	h := New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(4)
	h.register <- c
	h.unregister <- c

	// The hub closes the send channel on unregister
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := newTestClient(1)
	fast := newTestClient(8)
	h.register <- slow
	h.register <- fast

	// First broadcast fills the slow client's buffer, the second overflows it
	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	assert.Equal(t, "one", string(receive(t, fast)))
	assert.Equal(t, "two", string(receive(t, fast)))

	require.Equal(t, "one", string(receive(t, slow)))
	_, open := <-slow.send
	assert.False(t, open, "slow client's channel should be closed after being dropped")
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := newTestClient(4)
	h.register <- c

	cancel()

	select {
	case _, open := <-c.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown to close client")
	}
}

func TestHub_ShutdownUnblocksRegistration(t *testing.T) {
	h := New(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	cancel()
	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub to shut down")
	}

	// Late registrations and unregistrations must not hang once Run has
	// exited and nothing drains the channels
	late := newTestClient(4)
	finished := make(chan struct{})
	go func() {
		select {
		case h.register <- late:
		case <-h.done:
		}
		select {
		case h.unregister <- late:
		case <-h.done:
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("registration blocked after hub shutdown")
	}
}
