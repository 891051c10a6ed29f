package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/campaign"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 系统:
//   - GET /health        - 服务健康检查
//   - GET /metrics       - Prometheus 指标
//   - GET /openapi.json  - API 文档
//
// 认证 (auth):
//   - POST /api/v1/auth/register  - 注册（管理员令牌可指定角色）
//   - POST /api/v1/auth/login     - 登录
//   - GET  /api/v1/auth/me        - 当前用户
//   - PUT  /api/v1/auth/me        - 修改姓名
//   - PUT  /api/v1/auth/password  - 修改密码
//
// 用户管理（admin）:
//   - GET/PUT/DELETE /api/v1/auth/users[/{id}]
//   - GET /api/v1/auth/events     - 认证审计事件
//
// 广告活动 (campaign):
//   - GET    /api/v1/campaigns[/{id}]
//   - POST   /api/v1/campaigns               (admin, manager)
//   - PUT    /api/v1/campaigns/{id}          (admin, manager)
//   - DELETE /api/v1/campaigns/{id}          (admin)
//   - POST   /api/v1/campaigns/{id}/pause    (admin, manager)
//   - POST   /api/v1/campaigns/{id}/activate (admin, manager)
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", h.metrics.Handler())

	if h.openapi != nil {
		mux.HandleFunc("GET /openapi.json", h.OpenAPI)
	}

	// Auth 路由
	auth.NewHandler(h.authSvc).RegisterRoutes(mux)
	mux.HandleFunc("GET /api/v1/auth/events", auth.AdminOnly(h.ListAuthEvents))

	// Campaign 路由
	campaign.NewHandler(h.store).RegisterRoutes(mux)

	// 中间件链：CORS -> 请求日志 -> 指标 -> 认证 -> 路由
	var handler http.Handler = userIDMiddleware(mux)
	handler = auth.Middleware(h.authn)(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	handler = requestLogMiddleware(h.logger)(handler)
	return corsMiddleware(h.corsOrigins)(handler)
}

// corsMiddleware 按配置的来源添加 CORS 头，origins 含 "*" 时允许任意来源
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", "Authorization"}, ", "))
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
