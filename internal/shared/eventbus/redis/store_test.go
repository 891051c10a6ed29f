package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	s, err := NewStoreFromURL(url)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	stream := "test:auth:events:" + time.Now().Format("150405.000000")
	scoped := s.WithStream(stream)
	t.Cleanup(func() {
		s.client.Del(context.Background(), stream)
		s.Close()
	})
	return scoped
}

func TestPublishAndReadAuthEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := &eventbus.AuthEvent{Type: eventbus.AuthEventRegistered, UserID: "u-1", Email: "alice@example.com"}
	require.NoError(t, s.PublishAuthEvent(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &eventbus.AuthEvent{
		Type:   eventbus.AuthEventLoginFailed,
		Email:  "alice@example.com",
		Reason: "invalid_credentials",
		Data:   map[string]string{"client_ip": "10.0.0.1"},
	}
	require.NoError(t, s.PublishAuthEvent(ctx, second))

	events, err := s.GetAuthEvents(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, eventbus.AuthEventRegistered, events[0].Type)
	assert.Equal(t, "u-1", events[0].UserID)
	assert.Equal(t, "10.0.0.1", events[1].Data["client_ip"])
	assert.False(t, events[1].Timestamp.IsZero())

	after, err := s.GetAuthEvents(ctx, first.ID, 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, second.ID, after[0].ID)
}

func TestDecodeEventToleratesMissingFields(t *testing.T) {
	ev := decodeEvent(redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"type": "user.login", "data": "null"},
	})
	assert.Equal(t, "1-0", ev.ID)
	assert.Equal(t, eventbus.AuthEventLogin, ev.Type)
	assert.Nil(t, ev.Data)
	assert.True(t, ev.Timestamp.IsZero())
}

func TestNewStoreFromURLRejectsBadURL(t *testing.T) {
	_, err := NewStoreFromURL("not-a-redis-url://")
	assert.Error(t, err)
}
