// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：repository/（PostgreSQL、SQLite）、mongostore/
//   - 初始化时通过 infra 包按配置选择实现并注入
package storage

import (
	"context"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

// UserStore 用户目录
//
// 约定：
//   - 邮箱在调用前已规范化（小写、去空白）
//   - Get* 未找到时返回 (nil, nil)
//   - 更新/删除未命中时返回 ErrNotFound
//   - CreateUser 邮箱重复时返回 ErrDuplicate
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUser(ctx context.Context, id string, update model.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// CampaignStore 广告活动存储
type CampaignStore interface {
	CreateCampaign(ctx context.Context, c *model.Campaign) error
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, filter model.CampaignFilter) ([]*model.Campaign, error)
	UpdateCampaign(ctx context.Context, c *model.Campaign) error
	UpdateCampaignStatus(ctx context.Context, id string, status model.CampaignStatus) error
	DeleteCampaign(ctx context.Context, id string) error
	CountCampaigns(ctx context.Context) (int64, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	CampaignStore

	Ping(ctx context.Context) error
	Close() error
}
