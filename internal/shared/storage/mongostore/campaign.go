package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

// ============================================================================
// CampaignStore
// ============================================================================

func (s *Store) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	return insertOne(ctx, s.col(ColCampaigns), c)
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return findOne[model.Campaign](ctx, s.col(ColCampaigns), bson.D{{Key: "_id", Value: id}})
}

// campaignFilter 将过滤条件转换为 bson 查询
func campaignFilter(f model.CampaignFilter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Platform != "" {
		filter = append(filter, bson.E{Key: "platform", Value: string(f.Platform)})
	}
	dateRange := bson.D{}
	if f.StartFrom != nil {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: f.StartFrom.UTC()})
	}
	if f.StartTo != nil {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: f.StartTo.UTC()})
	}
	if len(dateRange) > 0 {
		filter = append(filter, bson.E{Key: "start_date", Value: dateRange})
	}
	return filter
}

func (s *Store) ListCampaigns(ctx context.Context, f model.CampaignFilter) ([]*model.Campaign, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetSkip(int64(f.Skip)).SetLimit(int64(f.Limit))
	}
	return findMany[model.Campaign](ctx, s.col(ColCampaigns), campaignFilter(f), opts)
}

func (s *Store) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	keywords := c.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	set := bson.D{
		{Key: "name", Value: c.Name},
		{Key: "platform", Value: string(c.Platform)},
		{Key: "budget_type", Value: string(c.BudgetType)},
		{Key: "budget_amount", Value: c.BudgetAmount},
		{Key: "start_date", Value: c.StartDate.UTC()},
		{Key: "status", Value: string(c.Status)},
		{Key: "target_audience", Value: c.TargetAudience},
		{Key: "keywords", Value: keywords},
		{Key: "bid_strategy", Value: c.BidStrategy},
		{Key: "creative_url", Value: c.CreativeURL},
		{Key: "total_spent", Value: c.TotalSpent},
		{Key: "impressions", Value: c.Impressions},
		{Key: "clicks", Value: c.Clicks},
		{Key: "conversions", Value: c.Conversions},
		{Key: "updated_at", Value: c.UpdatedAt.UTC()},
	}
	if c.EndDate != nil {
		set = append(set, bson.E{Key: "end_date", Value: c.EndDate.UTC()})
		return updateFields(ctx, s.col(ColCampaigns), c.ID, set)
	}

	res, err := s.col(ColCampaigns).UpdateOne(ctx, bson.D{{Key: "_id", Value: c.ID}}, bson.D{
		{Key: "$set", Value: set},
		{Key: "$unset", Value: bson.D{{Key: "end_date", Value: ""}}},
	})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateCampaignStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	return updateFields(ctx, s.col(ColCampaigns), id, bson.D{
		{Key: "status", Value: string(status)},
		{Key: "updated_at", Value: time.Now().UTC()},
	})
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColCampaigns), id)
}

func (s *Store) CountCampaigns(ctx context.Context) (int64, error) {
	return countAll(ctx, s.col(ColCampaigns))
}
