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

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(10))

	// Unregistering twice is harmless.
	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(10))
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

func TestHub_BroadcastTargetsUser(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(11, nil)
	require.NoError(t, err)

	hub.Broadcast(10, `{"verb":"commented"}`)

	select {
	case msg := <-clientA.Send:
		assert.Equal(t, `{"verb":"commented"}`, string(msg))
	default:
		t.Fatal("expected client A to receive the message")
	}

	select {
	case <-clientB.Send:
		t.Fatal("client B must not receive another user's notification")
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(11, nil)
	require.NoError(t, err)

	hub.BroadcastAll("maintenance")

	for _, c := range []*Client{clientA, clientB} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "maintenance", string(msg))
		default:
			t.Fatal("expected every client to receive the broadcast")
		}
	}
}

func TestHub_StartWiring_FansOutRedisMessages(t *testing.T) {
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

	client, err := hub.Register(7, nil)
	require.NoError(t, err)

	require.NoError(t, notifier.PublishUser(context.Background(), 7, `{"id":1}`))

	assert.Eventually(t, func() bool {
		select {
		case msg := <-client.Send:
			return string(msg) == `{"id":1}`
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
}
