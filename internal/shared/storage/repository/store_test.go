// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/dbutil"
	sqlitedriver "github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/driver/sqlite"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(dbutil.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newUser(email string, role model.UserRole, createdAt time.Time) *model.User {
	return &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "$2a$04$hash",
		Role:         role,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.False(t, d.IsUniqueViolation(nil))
	assert.True(t, d.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
	assert.Equal(t, "UPDATE t SET status = ? WHERE id = ?",
		d.Rebind("UPDATE t SET status = $1::varchar WHERE id = $2"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(dbutil.DriverMongoDB, "mongodb://localhost")
	assert.Error(t, err)
}

// ============================================================================
// User 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newUser("alice@example.com", model.UserRoleViewer, now)
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.UserRoleViewer, got.Role)
	assert.True(t, got.IsActive)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(now))

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice@example.com", byID.Email)

	require.NoError(t, s.UpdateUserPassword(ctx, u.ID, "$2a$04$other"))
	byID, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$other", byID.PasswordHash)

	name := "Alice Souza"
	role := model.UserRoleManager
	inactive := false
	require.NoError(t, s.UpdateUser(ctx, u.ID, model.UserUpdate{FullName: &name, Role: &role, IsActive: &inactive}))
	byID, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Souza", byID.FullName)
	assert.Equal(t, model.UserRoleManager, byID.Role)
	assert.False(t, byID.IsActive)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	byID, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, byID)
}

func TestUserNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)

	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "missing", "x"), storage.ErrNotFound)
	name := "Someone"
	assert.ErrorIs(t, s.UpdateUser(ctx, "missing", model.UserUpdate{FullName: &name}), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "missing"), storage.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newUser("dup@example.com", model.UserRoleViewer, now)
	require.NoError(t, s.CreateUser(ctx, first))

	second := newUser("dup@example.com", model.UserRoleAdmin, now)
	err := s.CreateUser(ctx, second)
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// 原记录未被修改
	got, err := s.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, model.UserRoleViewer, got.Role)
}

func TestListUsersPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, s.CreateUser(ctx, newUser(email, model.UserRoleViewer, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := s.ListUsers(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a@example.com", all[0].Email)

	page, err := s.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b@example.com", page[0].Email)

	empty, err := s.ListUsers(ctx, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// ============================================================================
// Campaign 测试
// ============================================================================

func newCampaign(name string, platform model.Platform, status model.CampaignStatus, start time.Time) *model.Campaign {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Campaign{
		ID:           uuid.NewString(),
		Name:         name,
		Platform:     platform,
		BudgetType:   model.BudgetTypeDaily,
		BudgetAmount: 150.5,
		StartDate:    start,
		Status:       status,
		Keywords:     []string{"promo", "verao"},
		OwnerID:      "owner-1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCampaignCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	c := newCampaign("Summer Sale", model.PlatformGoogleAds, model.CampaignStatusDraft, start)
	c.EndDate = &end
	c.TargetAudience = "18-35"
	require.NoError(t, s.CreateCampaign(ctx, c))

	got, err := s.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Summer Sale", got.Name)
	assert.Equal(t, []string{"promo", "verao"}, got.Keywords)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
	assert.Equal(t, "18-35", got.TargetAudience)
	assert.InDelta(t, 150.5, got.BudgetAmount, 0.001)

	got.Name = "Summer Sale 2"
	got.Clicks = 42
	got.EndDate = nil
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.UpdateCampaign(ctx, got))

	got, err = s.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale 2", got.Name)
	assert.Equal(t, int64(42), got.Clicks)
	assert.Nil(t, got.EndDate)

	require.NoError(t, s.UpdateCampaignStatus(ctx, c.ID, model.CampaignStatusPaused))
	got, err = s.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusPaused, got.Status)

	require.NoError(t, s.DeleteCampaign(ctx, c.ID))
	got, err = s.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.DeleteCampaign(ctx, c.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCampaignStatus(ctx, c.ID, model.CampaignStatusActive), storage.ErrNotFound)
}

func TestListCampaignsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateCampaign(ctx, newCampaign("jan google", model.PlatformGoogleAds, model.CampaignStatusActive, jan)))
	require.NoError(t, s.CreateCampaign(ctx, newCampaign("feb meta", model.PlatformMetaAds, model.CampaignStatusActive, feb)))
	require.NoError(t, s.CreateCampaign(ctx, newCampaign("mar meta", model.PlatformMetaAds, model.CampaignStatusPaused, mar)))

	all, err := s.ListCampaigns(ctx, model.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mar meta", all[0].Name, "ordered by start date descending")

	meta, err := s.ListCampaigns(ctx, model.CampaignFilter{Platform: model.PlatformMetaAds})
	require.NoError(t, err)
	assert.Len(t, meta, 2)

	active, err := s.ListCampaigns(ctx, model.CampaignFilter{Status: model.CampaignStatusActive, Platform: model.PlatformMetaAds})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "feb meta", active[0].Name)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	ranged, err := s.ListCampaigns(ctx, model.CampaignFilter{StartFrom: &from, StartTo: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "feb meta", ranged[0].Name)

	paged, err := s.ListCampaigns(ctx, model.CampaignFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "feb meta", paged[0].Name)

	n, err := s.CountCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
