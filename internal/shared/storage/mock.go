// Package storage 提供存储层抽象
//
// mock.go 提供用于测试的内存实现
package storage

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

// ============================================================================
// MemoryStore - 内存版 PersistentStore（用于测试）
// ============================================================================

// MemoryStore 线程安全的内存存储，语义与 SQL/Mongo 实现一致：
// 查询未命中返回 (nil, nil)，更新/删除未命中返回 ErrNotFound，邮箱重复返回 ErrDuplicate。
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	campaigns map[string]*model.Campaign

	idLookups    atomic.Int64
	emailLookups atomic.Int64
	writes       atomic.Int64
}

var _ PersistentStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*model.User),
		campaigns: make(map[string]*model.Campaign),
	}
}

// UserIDLookups GetUserByID 被调用的次数
func (m *MemoryStore) UserIDLookups() int64 { return m.idLookups.Load() }

// UserEmailLookups GetUserByEmail 被调用的次数
func (m *MemoryStore) UserEmailLookups() int64 { return m.emailLookups.Load() }

// Writes 成功写入（创建/更新/删除）的次数
func (m *MemoryStore) Writes() int64 { return m.writes.Load() }

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Close() error { return nil }

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return ErrDuplicate
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	m.users[user.ID] = cloneUser(user)
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.emailLookups.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.idLookups.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (m *MemoryStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, id string, update model.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	update.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	m.mu.RLock()
	all := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, cloneUser(u))
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return paginate(all, skip, limit), nil
}

func (m *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func cloneCampaign(c *model.Campaign) *model.Campaign {
	cp := *c
	cp.Keywords = append([]string{}, c.Keywords...)
	if c.EndDate != nil {
		end := *c.EndDate
		cp.EndDate = &end
	}
	return &cp
}

func (m *MemoryStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[c.ID]; ok {
		return ErrDuplicate
	}
	m.campaigns[c.ID] = cloneCampaign(c)
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.campaigns[id]; ok {
		return cloneCampaign(c), nil
	}
	return nil, nil
}

func (m *MemoryStore) ListCampaigns(ctx context.Context, filter model.CampaignFilter) ([]*model.Campaign, error) {
	m.mu.RLock()
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if filter.Match(c) {
			out = append(out, cloneCampaign(c))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	if filter.Limit <= 0 {
		if out == nil {
			out = []*model.Campaign{}
		}
		return out, nil
	}
	return paginate(out, filter.Skip, filter.Limit), nil
}

func (m *MemoryStore) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.campaigns[c.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneCampaign(c)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	m.campaigns[c.ID] = updated
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) UpdateCampaignStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) DeleteCampaign(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(m.campaigns, id)
	m.writes.Add(1)
	return nil
}

func (m *MemoryStore) CountCampaigns(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.campaigns)), nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
