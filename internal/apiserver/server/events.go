package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
)

// ============================================================================
// 认证事件
// ============================================================================

// instrumentedEventBus 在发布事件时累加 auth_events_total
type instrumentedEventBus struct {
	eventbus.EventBus
	metrics *Metrics
}

// InstrumentEventBus 包装事件总线，发布成功后记录指标
func InstrumentEventBus(bus eventbus.EventBus, m *Metrics) eventbus.EventBus {
	return &instrumentedEventBus{EventBus: bus, metrics: m}
}

func (b *instrumentedEventBus) PublishAuthEvent(ctx context.Context, event *eventbus.AuthEvent) error {
	b.metrics.RecordAuthEvent(string(event.Type))
	return b.EventBus.PublishAuthEvent(ctx, event)
}

// 审计事件分页
const (
	DefaultEventLimit = 100
	MaxEventLimit     = 1000
)

// eventLimit 解析 limit 参数，缺省或非法时取默认值，超出上限时截断
func eventLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return DefaultEventLimit
	}
	return min(limit, MaxEventLimit)
}

// ListAuthEvents 回放认证审计事件（仅管理员）
//
// 路由: GET /api/v1/auth/events?from_id=&limit=
//
// 查询参数:
//   - from_id: 起始事件 ID（不包含），为空时从头开始
//   - limit: 返回数量，默认 100，最大 1000
func (h *Handler) ListAuthEvents(w http.ResponseWriter, r *http.Request) {
	limit := eventLimit(r.URL.Query().Get("limit"))

	events, err := h.events.GetAuthEvents(r.Context(), r.URL.Query().Get("from_id"), int64(limit))
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("read auth events failed")
		writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}
	if events == nil {
		events = []*eventbus.AuthEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
