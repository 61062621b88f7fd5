package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的缓存，键带前缀
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 缓存
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// GetJSON 读取缓存
func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, prefixed(s.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 写入缓存，ttl <= 0 表示永不过期
func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, prefixed(s.prefix, key), data, ttl).Err()
}

// Delete 删除缓存
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = prefixed(s.prefix, key)
	}
	return s.client.Del(ctx, full...).Err()
}
