// Package eventbus 事件总线 mock 实现
package eventbus

import (
	"context"
	"sync"
)

// ============================================================================
// NoOpEventBus - 空操作的 EventBus 实现（未配置 Redis 时使用）
// ============================================================================

// NoOpEventBus 是一个不做任何操作的 EventBus 实现
type NoOpEventBus struct{}

// NewNoOpEventBus 创建 NoOpEventBus 实例
func NewNoOpEventBus() *NoOpEventBus {
	return &NoOpEventBus{}
}

func (e *NoOpEventBus) Close() error {
	return nil
}

func (e *NoOpEventBus) PublishAuthEvent(ctx context.Context, event *AuthEvent) error {
	return nil
}

func (e *NoOpEventBus) GetAuthEvents(ctx context.Context, fromID string, count int64) ([]*AuthEvent, error) {
	return []*AuthEvent{}, nil
}

// ============================================================================
// RecordingEventBus - 记录已发布事件（用于测试断言）
// ============================================================================

// RecordingEventBus 在内存中保存发布的事件
type RecordingEventBus struct {
	mu     sync.Mutex
	events []*AuthEvent
}

// NewRecordingEventBus 创建 RecordingEventBus 实例
func NewRecordingEventBus() *RecordingEventBus {
	return &RecordingEventBus{}
}

func (e *RecordingEventBus) Close() error {
	return nil
}

func (e *RecordingEventBus) PublishAuthEvent(ctx context.Context, event *AuthEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *event
	e.events = append(e.events, &cp)
	return nil
}

func (e *RecordingEventBus) GetAuthEvents(ctx context.Context, fromID string, count int64) ([]*AuthEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*AuthEvent, 0, len(e.events))
	for _, ev := range e.events {
		if count > 0 && int64(len(out)) >= count {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

// Types 返回已记录事件的类型序列
func (e *RecordingEventBus) Types() []AuthEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]AuthEventType, len(e.events))
	for i, ev := range e.events {
		types[i] = ev.Type
	}
	return types
}

var (
	_ EventBus = (*NoOpEventBus)(nil)
	_ EventBus = (*RecordingEventBus)(nil)
)
