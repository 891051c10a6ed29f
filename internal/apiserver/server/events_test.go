package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

func TestEventLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultEventLimit},
		{"abc", DefaultEventLimit},
		{"0", DefaultEventLimit},
		{"-5", DefaultEventLimit},
		{"25", 25},
		{"1000", MaxEventLimit},
		{"5000", MaxEventLimit},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, eventLimit(tt.raw))
		})
	}
}

// countingBus 记录最近一次 GetAuthEvents 的 count 参数
type countingBus struct {
	*eventbus.RecordingEventBus
	lastCount int64
}

func (b *countingBus) GetAuthEvents(ctx context.Context, fromID string, count int64) ([]*eventbus.AuthEvent, error) {
	b.lastCount = count
	return b.RecordingEventBus.GetAuthEvents(ctx, fromID, count)
}

func TestListAuthEventsClampsLimit(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestServer(t, store)
	bus := &countingBus{RecordingEventBus: eventbus.NewRecordingEventBus()}
	s.handler.events = InstrumentEventBus(bus, s.handler.metrics)

	_, err := s.handler.AuthService().EnsureAdminUser(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(t, err)
	token := s.login(t, "admin@example.com", "admin-pass")

	rec := s.do(t, http.MethodGet, "/api/v1/auth/events?limit=5000", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(MaxEventLimit), bus.lastCount)
}
