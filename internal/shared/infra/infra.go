// Package infra 基础设施聚合层
//
// 提供统一的基础设施初始化和依赖注入，包括：
//   - Storage：持久化存储（PostgreSQL / SQLite / MongoDB）
//   - EventBus：认证审计事件总线（Redis Streams，可选）
package infra

import (
	"fmt"
	"log"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/config"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	eventbusredis "github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus/redis"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/dbutil"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/mongostore"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage/repository"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 持久化存储
	Storage storage.PersistentStore

	// EventBus 事件总线（未配置 Redis 时为 NoOp）
	EventBus eventbus.EventBus
}

// New 按配置初始化全部基础设施
func New(cfg *config.Config) (*Infrastructure, error) {
	store, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	bus, err := NewEventBus(cfg.RedisURL)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Infrastructure{Storage: store, EventBus: bus}, nil
}

// NewStorage 按驱动类型创建持久化存储
func NewStorage(cfg *config.Config) (storage.PersistentStore, error) {
	driver, err := dbutil.ParseDriverType(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	switch driver {
	case dbutil.DriverMongoDB:
		s, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, fmt.Errorf("failed to open mongodb store: %w", err)
		}
		return s, nil
	default:
		s, err := repository.Open(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
		}
		log.Printf("[infra] %s storage ready", driver)
		return s, nil
	}
}

// NewEventBus 创建事件总线，redisURL 为空时返回 NoOp 实现
func NewEventBus(redisURL string) (eventbus.EventBus, error) {
	if redisURL == "" {
		log.Printf("[infra] Redis not configured, auth events disabled")
		return eventbus.NewNoOpEventBus(), nil
	}
	bus, err := eventbusredis.NewStoreFromURL(redisURL)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.EventBus != nil {
		if err := i.EventBus.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// NewNoOpInfrastructure 创建内存存储 + 空事件总线的基础设施（用于测试）
func NewNoOpInfrastructure() *Infrastructure {
	return &Infrastructure{
		Storage:  storage.NewMemoryStore(),
		EventBus: eventbus.NewNoOpEventBus(),
	}
}
