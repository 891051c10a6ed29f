// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义、通用工具函数、健康检查
//   - handler.go: 路由与中间件链
//   - metrics.go: Prometheus 指标
//   - events.go: 认证事件指标与回放接口
//   - requestlog.go: 请求 ID 与访问日志
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/pkg/logging"
)

// ServiceName 服务名（健康检查返回）
const ServiceName = "gestao-trafego-pago"

// Options 构造 Handler 所需依赖
type Options struct {
	Store       storage.PersistentStore
	EventBus    eventbus.EventBus // nil 时使用 NoOp
	Hasher      *auth.PasswordHasher
	Tokens      *auth.TokenService
	Logger      *logging.Logger
	Metrics     *Metrics
	OpenAPI     *openapi3.T // nil 时不暴露 /openapi.json
	CORSOrigins []string
}

// Handler API 处理器
//
// 持有存储、事件总线与认证组件，负责组装各领域路由。
type Handler struct {
	store       storage.PersistentStore
	events      eventbus.EventBus
	authSvc     *auth.Service
	authn       *auth.Authenticator
	metrics     *Metrics
	logger      *logging.Logger
	openapi     *openapi3.T
	corsOrigins []string
}

// NewHandler 创建 Handler 实例
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Default("api-server")
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics("api", nil)
	}
	bus := opts.EventBus
	if bus == nil {
		bus = eventbus.NewNoOpEventBus()
	}
	bus = InstrumentEventBus(bus, opts.Metrics)

	return &Handler{
		store:       opts.Store,
		events:      bus,
		authSvc:     auth.NewService(opts.Store, opts.Hasher, opts.Tokens, bus, opts.Logger),
		authn:       auth.NewAuthenticator(opts.Tokens, opts.Store, bus),
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		openapi:     opts.OpenAPI,
		corsOrigins: opts.CORSOrigins,
	}
}

// AuthService 返回认证服务（启动时创建管理员用）
func (h *Handler) AuthService() *auth.Service {
	return h.authSvc
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 将错误信息以 JSON 格式写入 HTTP 响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 存储可达时返回 200，否则 503；同时刷新用户与广告活动数量指标。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := map[string]interface{}{
		"status":    "ok",
		"service":   ServiceName,
		"database":  "ok",
		"timestamp": time.Now().UTC(),
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("health check: storage unreachable")
		resp["status"] = "degraded"
		resp["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	users, uerr := h.store.CountUsers(ctx)
	campaigns, cerr := h.store.CountCampaigns(ctx)
	if uerr == nil && cerr == nil {
		h.metrics.SetCounts(users, campaigns)
	}
	writeJSON(w, http.StatusOK, resp)
}

// OpenAPI 返回内嵌的 OpenAPI 文档
//
// 路由: GET /openapi.json
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.openapi)
}
