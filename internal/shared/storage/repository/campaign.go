package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/dbutil"
)

const campaignColumns = `id, name, platform, budget_type, budget_amount, start_date, end_date, status,
	target_audience, keywords, bid_strategy, creative_url,
	total_spent, impressions, clicks, conversions, owner_id, created_at, updated_at`

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	c := &model.Campaign{}
	var (
		endDate                                     sql.NullTime
		audience, bidStrategy, creativeURL, ownerID sql.NullString
		keywords                                    string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Platform, &c.BudgetType, &c.BudgetAmount,
		&c.StartDate, &endDate, &c.Status,
		&audience, &keywords, &bidStrategy, &creativeURL,
		&c.TotalSpent, &c.Impressions, &c.Clicks, &c.Conversions, &ownerID,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		t := endDate.Time
		c.EndDate = &t
	}
	c.TargetAudience = audience.String
	c.BidStrategy = bidStrategy.String
	c.CreativeURL = creativeURL.String
	c.OwnerID = ownerID.String
	c.Keywords = []string{}
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords of campaign %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func encodeKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	return string(b), err
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// CreateCampaign 创建广告活动
func (r *Store) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	keywords, err := encodeKeywords(c.Keywords)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO campaigns (`+campaignColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`),
		c.ID, c.Name, c.Platform, c.BudgetType, c.BudgetAmount,
		c.StartDate.UTC(), nullableTime(c.EndDate), c.Status,
		c.TargetAudience, keywords, c.BidStrategy, c.CreativeURL,
		c.TotalSpent, c.Impressions, c.Clicks, c.Conversions, c.OwnerID,
		c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	return r.translate(err)
}

// GetCampaign 获取广告活动，不存在时返回 (nil, nil)
func (r *Store) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// ListCampaigns 按条件分页列出广告活动（按开始日期倒序）
func (r *Store) ListCampaigns(ctx context.Context, filter model.CampaignFilter) ([]*model.Campaign, error) {
	var w dbutil.WhereBuilder
	if filter.Status != "" {
		w.Add("status = ?", string(filter.Status))
	}
	if filter.Platform != "" {
		w.Add("platform = ?", string(filter.Platform))
	}
	if filter.StartFrom != nil {
		w.Add("start_date >= ?", filter.StartFrom.UTC())
	}
	if filter.StartTo != nil {
		w.Add("start_date <= ?", filter.StartTo.UTC())
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns` + w.Clause() + ` ORDER BY start_date DESC, id ASC`
	if filter.Limit > 0 {
		query += " LIMIT " + w.Next(filter.Limit)
		query += " OFFSET " + w.Next(filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(query), w.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// UpdateCampaign 更新广告活动的可编辑字段
func (r *Store) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	keywords, err := encodeKeywords(c.Keywords)
	if err != nil {
		return err
	}
	return expectOne(r.db.ExecContext(ctx, r.rebind(
		`UPDATE campaigns SET name = $1, platform = $2, budget_type = $3, budget_amount = $4,
		 start_date = $5, end_date = $6, status = $7, target_audience = $8, keywords = $9,
		 bid_strategy = $10, creative_url = $11, total_spent = $12, impressions = $13,
		 clicks = $14, conversions = $15, updated_at = $16
		 WHERE id = $17`),
		c.Name, c.Platform, c.BudgetType, c.BudgetAmount,
		c.StartDate.UTC(), nullableTime(c.EndDate), c.Status, c.TargetAudience, keywords,
		c.BidStrategy, c.CreativeURL, c.TotalSpent, c.Impressions,
		c.Clicks, c.Conversions, c.UpdatedAt.UTC(),
		c.ID,
	))
}

// UpdateCampaignStatus 更新广告活动状态
func (r *Store) UpdateCampaignStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	return expectOne(r.db.ExecContext(ctx, r.rebind(
		`UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`),
		string(status), time.Now().UTC(), id,
	))
}

// DeleteCampaign 删除广告活动
func (r *Store) DeleteCampaign(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, r.rebind(`DELETE FROM campaigns WHERE id = $1`), id))
}

// CountCampaigns 广告活动总数
func (r *Store) CountCampaigns(ctx context.Context) (int64, error) {
	return r.count(ctx, "campaigns")
}
