package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpEventBus(t *testing.T) {
	var bus EventBus = NewNoOpEventBus()
	require.NoError(t, bus.PublishAuthEvent(context.Background(), &AuthEvent{Type: AuthEventLogin}))

	events, err := bus.GetAuthEvents(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, bus.Close())
}

func TestRecordingEventBus(t *testing.T) {
	bus := NewRecordingEventBus()
	ctx := context.Background()

	ev := &AuthEvent{Type: AuthEventRegistered, Email: "a@example.com"}
	require.NoError(t, bus.PublishAuthEvent(ctx, ev))
	ev.Email = "mutated@example.com"
	require.NoError(t, bus.PublishAuthEvent(ctx, &AuthEvent{Type: AuthEventLogin}))

	assert.Equal(t, []AuthEventType{AuthEventRegistered, AuthEventLogin}, bus.Types())

	limited, err := bus.GetAuthEvents(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "a@example.com", limited[0].Email)
}
