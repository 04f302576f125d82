package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, projectID, participantID string) *Client {
	return &Client{
		hub:           hub,
		send:          make(chan []byte, 16),
		projectID:     projectID,
		participantID: participantID,
	}
}

func waitForEnvelope(t *testing.T, c *Client) *Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(raw, &envelope))
		return &envelope
	case <-time.After(2 * time.Second):
		t.Fatal("no event arrived")
		return nil
	}
}

func TestHub_LocalDelivery(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	subscriber := newTestClient(hub, "p1", "alice")
	other := newTestClient(hub, "p2", "bob")
	hub.register <- subscriber
	hub.register <- other

	hub.Publish(context.Background(), "p1", "message:new", map[string]string{"message_id": "m1"})

	envelope := waitForEnvelope(t, subscriber)
	assert.Equal(t, "p1", envelope.ProjectID)
	assert.Equal(t, "message:new", envelope.Event)

	// The other project's room saw nothing.
	select {
	case <-other.send:
		t.Fatal("event leaked into another project's room")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_RedisBridge(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub(client, zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	subscriber := newTestClient(hub, "p1", "alice")
	hub.register <- subscriber

	// Give the subscribe loop a moment to attach.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(context.Background(), "p1", "member:joined", map[string]string{"member_id": "m1"})

	envelope := waitForEnvelope(t, subscriber)
	assert.Equal(t, "member:joined", envelope.Event)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	subscriber := newTestClient(hub, "p1", "alice")
	hub.register <- subscriber
	hub.unregister <- subscriber

	select {
	case _, open := <-subscriber.send:
		assert.False(t, open, "send channel should be closed on unregister")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was not closed")
	}

	// Publishing after unregister reaches nobody and does not panic.
	hub.Publish(context.Background(), "p1", "message:new", nil)
}
