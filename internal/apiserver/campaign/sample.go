package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

// SampleCampaigns 演示用广告活动（含已投放的计数器数据）
func SampleCampaigns(ownerID string) []*model.Campaign {
	bfEnd := time.Date(2024, 11, 30, 23, 59, 59, 0, time.UTC)
	return []*model.Campaign{
		{
			ID:             uuid.NewString(),
			Name:           "Campanha Black Friday",
			Platform:       model.PlatformGoogleAds,
			BudgetType:     model.BudgetTypeDaily,
			BudgetAmount:   500,
			StartDate:      time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC),
			EndDate:        &bfEnd,
			Status:         model.CampaignStatusActive,
			TargetAudience: "25-45 anos, interessados em eletrônicos",
			Keywords:       []string{"black friday", "ofertas", "desconto", "eletrônicos"},
			BidStrategy:    "maximize_conversions",
			CreativeURL:    "https://exemplo.com/banner.jpg",
			TotalSpent:     2450.75,
			Impressions:    125000,
			Clicks:         3125,
			Conversions:    156,
			OwnerID:        ownerID,
			CreatedAt:      time.Date(2024, 10, 15, 10, 30, 0, 0, time.UTC),
			UpdatedAt:      time.Date(2024, 10, 20, 14, 45, 0, 0, time.UTC),
		},
		{
			ID:             uuid.NewString(),
			Name:           "Lançamento App Mobile",
			Platform:       model.PlatformMetaAds,
			BudgetType:     model.BudgetTypeLifetime,
			BudgetAmount:   3000,
			StartDate:      time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC),
			Status:         model.CampaignStatusActive,
			TargetAudience: "18-35 anos, mobile users",
			Keywords:       []string{"app", "mobile", "download", "lançamento"},
			BidStrategy:    "lowest_cost",
			TotalSpent:     1875.50,
			Impressions:    89000,
			Clicks:         4450,
			Conversions:    89,
			OwnerID:        ownerID,
			CreatedAt:      time.Date(2024, 9, 28, 9, 15, 0, 0, time.UTC),
			UpdatedAt:      time.Date(2024, 10, 10, 11, 20, 0, 0, time.UTC),
		},
	}
}

// PopulateSample 写入演示数据，reset 为 true 时先清空全部广告活动
func PopulateSample(ctx context.Context, store storage.CampaignStore, ownerID string, reset bool) ([]*model.Campaign, error) {
	if reset {
		existing, err := store.ListCampaigns(ctx, model.CampaignFilter{})
		if err != nil {
			return nil, fmt.Errorf("list campaigns: %w", err)
		}
		for _, c := range existing {
			if err := store.DeleteCampaign(ctx, c.ID); err != nil {
				return nil, fmt.Errorf("delete campaign %s: %w", c.ID, err)
			}
		}
	}

	samples := SampleCampaigns(ownerID)
	for _, c := range samples {
		if err := store.CreateCampaign(ctx, c); err != nil {
			return nil, fmt.Errorf("create sample %q: %w", c.Name, err)
		}
	}
	return samples, nil
}
