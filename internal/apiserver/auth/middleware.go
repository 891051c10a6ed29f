package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

// ============================================================================
// Authenticator
// ============================================================================

// Authenticator 将令牌解析为当前有效的身份
type Authenticator struct {
	tokens *TokenService
	users  storage.UserStore
	events eventbus.AuthEventBus
}

// NewAuthenticator 创建认证器，events 可为 nil
func NewAuthenticator(tokens *TokenService, users storage.UserStore, events eventbus.AuthEventBus) *Authenticator {
	if events == nil {
		events = eventbus.NewNoOpEventBus()
	}
	return &Authenticator{tokens: tokens, users: users, events: events}
}

// Authenticate 校验令牌并查询一次用户目录
//
// 用户不存在、已停用或邮箱与令牌 sub 不一致时拒绝，所有拒绝都包装 ErrRejected。
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	user, err := a.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	switch {
	case user == nil:
		return nil, a.reject(ctx, claims, "user not found")
	case !user.IsActive:
		return nil, a.reject(ctx, claims, "user inactive")
	case user.Email != claims.Subject:
		return nil, a.reject(ctx, claims, "subject mismatch")
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		User:   user,
	}, nil
}

func (a *Authenticator) reject(ctx context.Context, claims *TokenClaims, reason string) error {
	if err := a.events.PublishAuthEvent(ctx, &eventbus.AuthEvent{
		Type:   eventbus.AuthEventRejected,
		UserID: claims.UserID,
		Email:  claims.Subject,
		Reason: reason,
	}); err != nil {
		log.Printf("[auth] publish rejected event failed: %v", err)
	}
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

// Authorize 判断身份的角色是否在允许集合中
func Authorize(id *Identity, allowed ...model.UserRole) error {
	if id == nil {
		return ErrForbidden
	}
	for _, role := range allowed {
		if id.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// ============================================================================
// HTTP 中间件
// ============================================================================

// 免认证路由（精确匹配 "METHOD path" 或路径前缀）
var publicExact = map[string]bool{
	"POST /api/v1/auth/register": true,
	"POST /api/v1/auth/login":    true,
	"GET /openapi.json":          true,
}

var publicPrefixes = []string{
	"/health",
	"/metrics",
}

func isPublicRoute(method, path string) bool {
	if method == http.MethodOptions {
		return true
	}
	if publicExact[method+" "+path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// bearerToken 提取 Authorization: Bearer <token>
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Middleware 认证中间件：公开路由直接放行，其余路由要求有效的 Bearer 令牌
//
// register 路由携带令牌时也会尝试认证，以便管理员创建指定角色的用户；
// 该路由上认证失败按匿名处理。
func Middleware(authn *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := isPublicRoute(r.Method, r.URL.Path)
			token, ok := bearerToken(r)

			if public {
				if ok && r.URL.Path == "/api/v1/auth/register" {
					if id, err := authn.Authenticate(r.Context(), token); err == nil {
						r = r.WithContext(WithIdentity(r.Context(), id))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				writeUnauthorized(w, "not authenticated")
				return
			}

			id, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrRejected) {
					log.Printf("[auth] authenticate error: %v", err)
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				log.Printf("[auth] request rejected: %s %s: %v", r.Method, r.URL.Path, err)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole 角色守卫，需放在 Middleware 之后
func RequireRole(roles ...model.UserRole) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if id == nil {
				writeUnauthorized(w, "not authenticated")
				return
			}
			if err := Authorize(id, roles...); err != nil {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next(w, r)
		}
	}
}

// AdminOnly 管理员专属路由
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(model.UserRoleAdmin)(next)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}
