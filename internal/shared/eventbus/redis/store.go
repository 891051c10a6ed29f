// Package redis 基于 Redis Streams 的事件总线实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
)

// Store Redis 事件总线
type Store struct {
	client     *redis.Client
	stream     string
	ownsClient bool
}

var _ eventbus.EventBus = (*Store)(nil)

// NewStoreFromURL 从 URL 创建事件总线（持有连接，Close 时关闭）
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/EventBus] Connected to %s", opts.Addr)
	s := NewStoreFromClient(client)
	s.ownsClient = true
	return s, nil
}

// NewStoreFromClient 复用已有客户端创建事件总线
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client, stream: eventbus.KeyAuthEvents}
}

// WithStream 使用自定义 Stream 名（测试隔离用）
func (s *Store) WithStream(stream string) *Store {
	cp := *s
	cp.stream = stream
	return &cp
}

// Close 关闭连接
func (s *Store) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}

// PublishAuthEvent 发布认证事件
func (s *Store) PublishAuthEvent(ctx context.Context, event *eventbus.AuthEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"type":      string(event.Type),
			"user_id":   event.UserID,
			"email":     event.Email,
			"actor_id":  event.ActorID,
			"reason":    event.Reason,
			"timestamp": event.Timestamp.Format(time.RFC3339Nano),
			"data":      string(dataJSON),
		},
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	event.ID = id
	return nil
}

// GetAuthEvents 从 fromID 之后读取事件（fromID 为空表示从头开始）
func (s *Store) GetAuthEvents(ctx context.Context, fromID string, count int64) ([]*eventbus.AuthEvent, error) {
	start := "-"
	if fromID != "" {
		start = "(" + fromID
	}

	var (
		msgs []redis.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = s.client.XRangeN(ctx, s.stream, start, "+", count).Result()
	} else {
		msgs, err = s.client.XRange(ctx, s.stream, start, "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events := make([]*eventbus.AuthEvent, 0, len(msgs))
	for _, msg := range msgs {
		events = append(events, decodeEvent(msg))
	}
	return events, nil
}

func decodeEvent(msg redis.XMessage) *eventbus.AuthEvent {
	str := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}
	event := &eventbus.AuthEvent{
		ID:      msg.ID,
		Type:    eventbus.AuthEventType(str("type")),
		UserID:  str("user_id"),
		Email:   str("email"),
		ActorID: str("actor_id"),
		Reason:  str("reason"),
	}
	if t, err := time.Parse(time.RFC3339Nano, str("timestamp")); err == nil {
		event.Timestamp = t
	}
	if data := str("data"); data != "" && data != "null" {
		_ = json.Unmarshal([]byte(data), &event.Data)
	}
	return event
}
