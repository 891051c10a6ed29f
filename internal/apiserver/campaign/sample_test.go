package campaign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

func TestPopulateSample(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateCampaign(ctx, &model.Campaign{ID: "old", Name: "Old", Platform: model.PlatformGoogleAds, Status: model.CampaignStatusDraft}))

	_, err := PopulateSample(ctx, store, "owner-1", true)
	require.NoError(t, err)

	list, err := store.ListCampaigns(ctx, model.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, c := range list {
		assert.NotEqual(t, "old", c.ID)
		assert.Equal(t, "owner-1", c.OwnerID)
		assert.Positive(t, c.TotalSpent)
		assert.Positive(t, c.Impressions)
		assert.Positive(t, c.Clicks)
		assert.Positive(t, c.Conversions)
	}
	// 按开始日期倒序
	assert.Equal(t, "Campanha Black Friday", list[0].Name)
	assert.Equal(t, int64(3125), list[0].Clicks)

	// 不清空时追加
	_, err = PopulateSample(ctx, store, "owner-1", false)
	require.NoError(t, err)
	n, err := store.CountCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
