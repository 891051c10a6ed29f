package auth

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/validation"
)

// Handler 认证 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建认证处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)
	mux.HandleFunc("PUT /api/v1/auth/me", h.UpdateMe)
	mux.HandleFunc("PUT /api/v1/auth/password", h.ChangePassword)

	mux.HandleFunc("GET /api/v1/auth/users", AdminOnly(h.ListUsers))
	mux.HandleFunc("GET /api/v1/auth/users/{id}", AdminOnly(h.GetUser))
	mux.HandleFunc("PUT /api/v1/auth/users/{id}", AdminOnly(h.UpdateUser))
	mux.HandleFunc("DELETE /api/v1/auth/users/{id}", AdminOnly(h.DeleteUser))
}

// ============================================================================
// 请求类型
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"` // OAuth2 密码模式字段名，等同 email
	Password string `json:"password"`
}

type updateMeRequest struct {
	FullName string `json:"full_name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req, IdentityFrom(r.Context()))
	if err != nil {
		writeAuthError(w, "register", err)
		return
	}

	log.Printf("[auth] User registered: %s (%s)", user.Email, user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Login 用户登录，接受 JSON 或表单（username/password）
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}

	result, err := h.svc.Login(r.Context(), email, req.Password)
	if err != nil {
		writeAuthError(w, "login", err)
		return
	}

	log.Printf("[auth] User logged in: %s", result.User.Email)
	writeJSON(w, http.StatusOK, result)
}

// Me 获取当前用户信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(IdentityFrom(r.Context()))
	if err != nil {
		writeAuthError(w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe 修改当前用户姓名
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.UpdateMe(r.Context(), IdentityFrom(r.Context()), req.FullName)
	if err != nil {
		writeAuthError(w, "update_me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), IdentityFrom(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, "change_password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ============================================================================
// 工具函数
// ============================================================================

// writeAuthError 将错误分类映射为 HTTP 状态码
func writeAuthError(w http.ResponseWriter, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error(), "fields": verr.Fields})
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCurrentPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		writeError(w, http.StatusConflict, ErrDuplicateEmail.Error())
	case errors.Is(err, ErrInvalidCredentials):
		writeUnauthorized(w, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrInactiveAccount):
		writeUnauthorized(w, ErrInactiveAccount.Error())
	case errors.Is(err, ErrRejected):
		writeUnauthorized(w, "not authenticated")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, ErrForbidden.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		log.Printf("[auth.%s] internal error: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
