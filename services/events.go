package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// EventOrderStatusChanged is published whenever orders.status changes
const EventOrderStatusChanged = "order.status_changed"

// OrderEvent describes a committed change to an order
type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      uint               `json:"order_id"`
	TrackingCode string             `json:"tracking_code"`
	From         models.OrderStatus `json:"from"`
	To           models.OrderStatus `json:"to"`
	Reason       string             `json:"reason"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

// EventPublisher delivers order events after their transaction commits
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// RedisEventPublisher publishes events on a Redis pub/sub channel.
// Each event goes to the shared channel and to a per-order channel.
type RedisEventPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisEventPublisher connects to Redis and verifies the connection
func NewRedisEventPublisher(ctx context.Context, addr, password string, db int) (*RedisEventPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisEventPublisher{rdb: rdb, channel: "fazztrack:orders"}, nil
}

// Publish implements EventPublisher
func (p *RedisEventPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.rdb.Publish(ctx, OrderChannel(p.channel, event.OrderID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (p *RedisEventPublisher) Close() error {
	return p.rdb.Close()
}

// OrderChannel is the per-order channel name under base
func OrderChannel(base string, orderID uint) string {
	return fmt.Sprintf("%s:%d", base, orderID)
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, OrderEvent) error {
	return nil
}
