package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"nexuspos/internal/domain"
)

type RedisLookupCache struct {
	client *redis.Client
}

func NewRedisLookupCache(addr string, password string, db int) *RedisLookupCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisLookupCache{client: client}
}

func (c *RedisLookupCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisLookupCache) Close() error {
	return c.client.Close()
}

func (c *RedisLookupCache) Get(ctx context.Context, key string) ([]domain.Product, bool, error) {
	val, err := c.client.Get(ctx, "lookup:"+key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error {
	if products == nil {
		return nil
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "lookup:"+key, payload, ttl).Err()
}
