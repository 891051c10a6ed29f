// Package eventbus 事件总线类型定义
package eventbus

import (
	"time"
)

// ============================================================================
// 事件类型
// ============================================================================

// AuthEventType 认证事件类型
type AuthEventType string

const (
	AuthEventRegistered      AuthEventType = "user.registered"
	AuthEventLogin           AuthEventType = "user.login"
	AuthEventLoginFailed     AuthEventType = "user.login_failed"
	AuthEventRejected        AuthEventType = "auth.rejected"
	AuthEventPasswordChanged AuthEventType = "user.password_changed"
	AuthEventUserUpdated     AuthEventType = "user.updated"
	AuthEventUserDeleted     AuthEventType = "user.deleted"
)

// AuthEvent 认证审计事件
type AuthEvent struct {
	ID        string            `json:"id"`
	Type      AuthEventType     `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	ActorID   string            `json:"actor_id,omitempty"` // 执行操作的用户（管理员操作时与 UserID 不同）
	Reason    string            `json:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// KeyAuthEvents 认证事件 Stream
	KeyAuthEvents = "auth:events"

	// Stream 最大长度（近似裁剪）
	MaxStreamLength = 10000
)
