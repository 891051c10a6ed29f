package model

import (
	"math"
	"time"
)

// Platform 广告平台
type Platform string

const (
	PlatformGoogleAds    Platform = "google_ads"
	PlatformMetaAds      Platform = "meta_ads"
	PlatformTikTokAds    Platform = "tiktok_ads"
	PlatformLinkedInAds  Platform = "linkedin_ads"
	PlatformTwitterAds   Platform = "twitter_ads"
	PlatformPinterestAds Platform = "pinterest_ads"
)

// Valid 平台是否受支持
func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogleAds, PlatformMetaAds, PlatformTikTokAds,
		PlatformLinkedInAds, PlatformTwitterAds, PlatformPinterestAds:
		return true
	}
	return false
}

// BudgetType 预算类型
type BudgetType string

const (
	BudgetTypeDaily    BudgetType = "daily"
	BudgetTypeLifetime BudgetType = "lifetime"
)

// Valid 预算类型是否受支持
func (b BudgetType) Valid() bool {
	return b == BudgetTypeDaily || b == BudgetTypeLifetime
}

// CampaignStatus 广告活动状态
type CampaignStatus string

const (
	CampaignStatusDraft    CampaignStatus = "draft"
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusPaused   CampaignStatus = "paused"
	CampaignStatusEnded    CampaignStatus = "ended"
	CampaignStatusArchived CampaignStatus = "archived"
)

// Valid 状态是否受支持
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused,
		CampaignStatusEnded, CampaignStatusArchived:
		return true
	}
	return false
}

// Campaign 广告活动
//
// 计数器（花费、展示、点击、转化）只做存储，不在服务端计算比率。
type Campaign struct {
	ID             string         `json:"id" bson:"_id"`
	Name           string         `json:"name" bson:"name"`
	Platform       Platform       `json:"platform" bson:"platform"`
	BudgetType     BudgetType     `json:"budget_type" bson:"budget_type"`
	BudgetAmount   float64        `json:"budget_amount" bson:"budget_amount"`
	StartDate      time.Time      `json:"start_date" bson:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Status         CampaignStatus `json:"status" bson:"status"`
	TargetAudience string         `json:"target_audience,omitempty" bson:"target_audience,omitempty"`
	Keywords       []string       `json:"keywords" bson:"keywords"`
	BidStrategy    string         `json:"bid_strategy,omitempty" bson:"bid_strategy,omitempty"`
	CreativeURL    string         `json:"creative_url,omitempty" bson:"creative_url,omitempty"`
	TotalSpent     float64        `json:"total_spent" bson:"total_spent"`
	Impressions    int64          `json:"impressions" bson:"impressions"`
	Clicks         int64          `json:"clicks" bson:"clicks"`
	Conversions    int64          `json:"conversions" bson:"conversions"`
	OwnerID        string         `json:"owner_id" bson:"owner_id"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// CampaignFilter 广告活动查询条件
type CampaignFilter struct {
	Status    CampaignStatus
	Platform  Platform
	StartFrom *time.Time
	StartTo   *time.Time
	Skip      int
	Limit     int
}

// Match 判断广告活动是否满足过滤条件（不含分页）
func (f CampaignFilter) Match(c *Campaign) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Platform != "" && c.Platform != f.Platform {
		return false
	}
	if f.StartFrom != nil && c.StartDate.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && c.StartDate.After(*f.StartTo) {
		return false
	}
	return true
}

// RoundMoney 金额保留两位小数
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
