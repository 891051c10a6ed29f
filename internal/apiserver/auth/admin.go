package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ============================================================================
// 用户管理 Handlers（仅管理员）
// ============================================================================

// ListUsers 分页列出用户
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid skip")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	users, err := h.svc.ListUsers(r.Context(), skip, limit)
	if err != nil {
		writeAuthError(w, "list_users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser 按 ID 查询用户
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAuthError(w, "get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser 修改用户姓名、角色或状态
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), IdentityFrom(r.Context()), r.PathValue("id"), req)
	if err != nil {
		writeAuthError(w, "update_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), IdentityFrom(r.Context()), r.PathValue("id")); err != nil {
		writeAuthError(w, "delete_user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
