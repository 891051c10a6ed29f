// Package campaign 广告活动领域 - HTTP 处理
package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/validation"
)

// 列表分页
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Handler 广告活动 HTTP 处理器
type Handler struct {
	store storage.CampaignStore
}

// NewHandler 创建广告活动处理器
func NewHandler(store storage.CampaignStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册广告活动路由
//
// 读取只需登录；创建、修改、暂停、激活需要 admin 或 manager；删除仅 admin。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	editors := auth.RequireRole(model.UserRoleAdmin, model.UserRoleManager)

	mux.HandleFunc("GET /api/v1/campaigns", h.List)
	mux.HandleFunc("GET /api/v1/campaigns/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/campaigns", editors(h.Create))
	mux.HandleFunc("PUT /api/v1/campaigns/{id}", editors(h.Update))
	mux.HandleFunc("DELETE /api/v1/campaigns/{id}", auth.AdminOnly(h.Delete))
	mux.HandleFunc("POST /api/v1/campaigns/{id}/pause", editors(h.Pause))
	mux.HandleFunc("POST /api/v1/campaigns/{id}/activate", editors(h.Activate))
}

// ============================================================================
// 请求类型
// ============================================================================

// CreateRequest 创建广告活动
type CreateRequest struct {
	Name           string   `json:"name" validate:"required,min=3,max=100"`
	Platform       string   `json:"platform" validate:"required"`
	BudgetType     string   `json:"budget_type,omitempty"`
	BudgetAmount   float64  `json:"budget_amount" validate:"gt=0"`
	StartDate      string   `json:"start_date" validate:"required"`
	EndDate        *string  `json:"end_date,omitempty"`
	Status         string   `json:"status,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	BidStrategy    string   `json:"bid_strategy,omitempty"`
	CreativeURL    string   `json:"creative_url,omitempty" validate:"omitempty,url"`
}

// UpdateRequest 部分更新广告活动，未提供的字段保持不变
type UpdateRequest struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	BudgetAmount   *float64  `json:"budget_amount,omitempty" validate:"omitempty,gt=0"`
	Status         *string   `json:"status,omitempty"`
	EndDate        *string   `json:"end_date,omitempty"`
	TargetAudience *string   `json:"target_audience,omitempty"`
	Keywords       *[]string `json:"keywords,omitempty"`
	BidStrategy    *string   `json:"bid_strategy,omitempty"`
	CreativeURL    *string   `json:"creative_url,omitempty" validate:"omitempty,url"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// List 列出广告活动
// GET /api/v1/campaigns?status=&platform=&start_from=&start_to=&skip=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	campaigns, err := h.store.ListCampaigns(r.Context(), filter)
	if err != nil {
		log.Printf("[campaign.list] ListCampaigns error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// Get 获取单个广告活动
// GET /api/v1/campaigns/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create 创建广告活动
// POST /api/v1/campaigns
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := req.toCampaign()
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if id := auth.IdentityFrom(r.Context()); id != nil {
		c.OwnerID = id.UserID
	}

	if err := h.store.CreateCampaign(r.Context(), c); err != nil {
		log.Printf("[campaign.create] CreateCampaign error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create campaign")
		return
	}

	log.Printf("[campaign] Created %s (%s) on %s", c.ID, c.Name, c.Platform)
	writeJSON(w, http.StatusCreated, c)
}

// Update 部分更新广告活动
// PUT /api/v1/campaigns/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := req.apply(c); err != nil {
		writeValidationError(w, err)
		return
	}
	c.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateCampaign(r.Context(), c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		log.Printf("[campaign.update] UpdateCampaign error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update campaign")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete 删除广告活动
// DELETE /api/v1/campaigns/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCampaign(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		log.Printf("[campaign.delete] DeleteCampaign error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pause 暂停广告活动
// POST /api/v1/campaigns/{id}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.CampaignStatusPaused)
}

// Activate 激活广告活动
// POST /api/v1/campaigns/{id}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.CampaignStatusActive)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status model.CampaignStatus) {
	id := r.PathValue("id")
	if err := h.store.UpdateCampaignStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		log.Printf("[campaign.status] UpdateCampaignStatus(%s, %s) error: %v", id, status, err)
		writeError(w, http.StatusInternalServerError, "failed to update campaign status")
		return
	}
	h.Get(w, r)
}

// load 读取路径中的广告活动，不存在时写 404
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*model.Campaign, bool) {
	c, err := h.store.GetCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[campaign.get] GetCampaign error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "campaign not found")
		return nil, false
	}
	return c, true
}

// ============================================================================
// 请求转换
// ============================================================================

func (req CreateRequest) toCampaign() (*model.Campaign, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	platform := model.Platform(req.Platform)
	if !platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", req.Platform)
	}
	budgetType := model.BudgetTypeDaily
	if req.BudgetType != "" {
		budgetType = model.BudgetType(req.BudgetType)
		if !budgetType.Valid() {
			return nil, fmt.Errorf("unknown budget_type %q", req.BudgetType)
		}
	}
	status := model.CampaignStatusDraft
	if req.Status != "" {
		status = model.CampaignStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", req.Status)
		}
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date: %w", err)
		}
		end = &t
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	keywords := req.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	now := time.Now().UTC()
	return &model.Campaign{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Platform:       platform,
		BudgetType:     budgetType,
		BudgetAmount:   model.RoundMoney(req.BudgetAmount),
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		TargetAudience: req.TargetAudience,
		Keywords:       keywords,
		BidStrategy:    req.BidStrategy,
		CreativeURL:    req.CreativeURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (req UpdateRequest) apply(c *model.Campaign) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.BudgetAmount != nil {
		c.BudgetAmount = model.RoundMoney(*req.BudgetAmount)
	}
	if req.Status != nil {
		status := model.CampaignStatus(*req.Status)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", *req.Status)
		}
		c.Status = status
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			c.EndDate = nil
		} else {
			t, err := parseDate(*req.EndDate)
			if err != nil {
				return fmt.Errorf("end_date: %w", err)
			}
			c.EndDate = &t
		}
	}
	if req.TargetAudience != nil {
		c.TargetAudience = *req.TargetAudience
	}
	if req.Keywords != nil {
		c.Keywords = append([]string{}, (*req.Keywords)...)
	}
	if req.BidStrategy != nil {
		c.BidStrategy = *req.BidStrategy
	}
	if req.CreativeURL != nil {
		c.CreativeURL = *req.CreativeURL
	}
	return checkDateRange(c.StartDate, c.EndDate)
}
