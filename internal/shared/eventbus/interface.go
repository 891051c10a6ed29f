// Package eventbus 事件总线抽象接口
//
// 提供认证审计事件的发布与回放能力，当前由 Redis Streams 实现；
// 未配置 Redis 时使用 NoOpEventBus。
package eventbus

import (
	"context"
)

// AuthEventBus 认证事件总线接口
type AuthEventBus interface {
	PublishAuthEvent(ctx context.Context, event *AuthEvent) error
	GetAuthEvents(ctx context.Context, fromID string, count int64) ([]*AuthEvent, error)
}

// EventBus 事件总线组合接口
type EventBus interface {
	AuthEventBus
	Close() error
}
