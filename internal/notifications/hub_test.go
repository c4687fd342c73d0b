package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))
	assert.False(t, hub.IsOnline(11))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(10))

	// Unregistering twice is harmless.
	hub.UnregisterClient(client)
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(10, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(10, nil)
	assert.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(11, nil)
	assert.NoError(t, err)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "just for alice")
	select {
	case msg := <-alice.Send:
		assert.Equal(t, "just for alice", string(msg))
	default:
		t.Fatal("alice received nothing")
	}
	select {
	case <-bob.Send:
		t.Fatal("bob should not receive a targeted message")
	default:
	}

	hub.BroadcastAll("for everyone")
	for _, c := range []*Client{alice, bob} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "for everyone", string(msg))
		default:
			t.Fatalf("user %d received nothing", c.UserID)
		}
	}
}

func TestHub_WiringForwardsFeedEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(5, nil)
	require.NoError(t, err)

	require.NoError(t, notifier.PublishFeed(context.Background(), FeedEvent{Type: EventPostCreated}))
	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), EventPostCreated)
	case <-time.After(time.Second):
		t.Fatal("broadcast event not delivered")
	}

	require.NoError(t, notifier.PublishUser(context.Background(), 5, "direct"))
	select {
	case msg := <-client.Send:
		assert.Equal(t, "direct", string(msg))
	case <-time.After(time.Second):
		t.Fatal("user event not delivered")
	}
}
