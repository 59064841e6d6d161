package cache

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const orderKeyPrefix = "bevforge:orders:"

// RedisOrderCache is a read-through cache in front of an OrderClient.
//
// Order listings are cached per status filter for a short TTL. Any status
// push through the cache drops every cached listing, so the next read goes
// back to the upstream service. Cache failures never fail a call; they are
// logged and the upstream client is used directly.
type RedisOrderCache struct {
	next   ports.OrderClient
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOrderCache(next ports.OrderClient, client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{next: next, client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func orderKey(status domain.OrderStatus) string {
	if status == "" {
		return orderKeyPrefix + "all"
	}
	return orderKeyPrefix + string(status)
}

func (c *RedisOrderCache) ListOrders(ctx context.Context, status domain.OrderStatus) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "orders.cache.ListOrders")(&err)

	key := orderKey(status)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []domain.Order
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
		obs.L().Warn("order cache entry unreadable", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		obs.L().Warn("order cache read failed", zap.String("key", key), zap.Error(err))
	}

	orders, err := c.next.ListOrders(ctx, status)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("encode orders for cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		obs.L().Warn("order cache write failed", zap.String("key", key), zap.Error(err))
	}

	return orders, nil
}

func (c *RedisOrderCache) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if err := c.next.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *RedisOrderCache) invalidate(ctx context.Context) {
	keys := []string{orderKey("")}
	for _, s := range domain.OrderStatuses {
		keys = append(keys, orderKey(s))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		obs.L().Warn("order cache invalidate failed", zap.Error(err))
	}
}
