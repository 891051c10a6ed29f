package auth

import (
	"context"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

// contextKey context 键类型
type contextKey string

const ctxKeyIdentity contextKey = "auth_identity"

// Identity 已认证的调用方，角色取自用户目录中的当前值而非令牌
type Identity struct {
	UserID string
	Email  string
	Role   model.UserRole
	User   *model.User // 认证时读取的用户快照
}

// IsAdmin 是否管理员
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.UserRoleAdmin
}

// WithIdentity 将认证身份注入 context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom 从 context 获取认证身份，未认证时返回 nil
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}
